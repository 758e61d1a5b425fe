// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

package generate_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alberand/kd/internal/config"
	"github.com/alberand/kd/internal/generate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fetch struct {
	Repo string
	Rev  string
}

// fakeFetcher returns "src:<rev>" for every fetch and records the calls.
// Fetches of revisions in errs fail with the given error.
type fakeFetcher struct {
	calls []fetch
	errs  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, repo, rev string) (string, error) {
	f.calls = append(f.calls, fetch{repo, rev})

	if err, exists := f.errs[rev]; exists {
		return "", err
	}

	return "src:" + rev, nil
}

type formatterFunc func([]byte) ([]byte, error)

func (f formatterFunc) Format(_ context.Context, code []byte) ([]byte, error) {
	return f(code)
}

const emptyModule = `# Generated by kd for environment "test". Do not edit, changes
# are overwritten. Edit .kd.toml instead.
{pkgs, ...}: {

  kernel = {
  };

  kernel.kconfig = with pkgs.lib.kernel; {
  };
}
`

func TestGenerator_Generate_Empty(t *testing.T) {
	fetcher := &fakeFetcher{}
	generator := generate.Generator{Fetcher: fetcher, Curdir: t.TempDir()}

	result, err := generator.Generate(context.Background(), &config.Config{Name: "test"})
	require.NoError(t, err)

	assert.Equal(t, emptyModule, string(result.Artifact))
	assert.Empty(t, result.Args)
	assert.Empty(t, result.Env)
	assert.Empty(t, fetcher.calls)
}

func TestGenerator_Generate_Full(t *testing.T) {
	headers := &config.KernelHeaders{
		Repo:    "https://example.com/linux.git",
		Rev:     "kh1",
		Version: "6.13",
	}

	cfg := &config.Config{
		Name:     "xfs",
		Packages: []string{"vim", "gdb"},
		Kernel: &config.KernelConfig{
			Rev:     "k1",
			Version: "v6.13",
			Flavors: []string{"common", "xfs"},
			Config: config.KernelOptions{
				{Name: "CONFIG_XFS_FS", Value: "y"},
				{Name: "CONFIG_NR_CPUS", Value: int64(64)},
				{Name: "CONFIG_DEBUG_INFO", Value: true},
			},
		},
		Xfstests: &config.XfstestsConfig{
			Rev:           "xt1",
			Args:          "-g quick",
			TestDev:       "/dev/sda",
			ScratchDev:    "/dev/sdb",
			Filesystem:    "xfs",
			ExtraEnv:      "FOO=1\nBAR=\"two\"",
			Hooks:         "/etc/kd/hooks",
			KernelHeaders: headers,
		},
		Xfsprogs: &config.XfsprogsConfig{
			Rev:           "xp1",
			KernelHeaders: headers,
		},
		Qemu: &config.QemuConfig{
			Options: []string{"-m", "4G"},
		},
	}

	expected := `# Generated by kd for environment "xfs". Do not edit, changes
# are overwritten. Edit .kd.toml instead.
{pkgs, ...}: {
  environment.systemPackages = with pkgs; [ vim gdb ];
  services.xfstests.src = src:xt1;
  services.xfstests.arguments = "-g quick";
  services.xfstests.test-dev = "/dev/sda";
  services.xfstests.scratch-dev = "/dev/sdb";
  services.xfstests.filesystem = "xfs";
  services.xfstests.extraEnv = ''
FOO=1
BAR="two"
'';
  services.xfstests.hooks = /etc/kd/hooks;
  services.xfstests.kernelHeaders = pkgs.makeLinuxHeaders { version = "6.13"; src = src:kh1; };
  services.xfsprogs.src = src:xp1;
  services.xfsprogs.kernelHeaders = pkgs.makeLinuxHeaders { version = "6.13"; src = src:kh1; };
  virtualisation.qemu.options = [ "-m" "4G" ];

  kernel = {
    version = "v6.13";
    src = src:k1;
    flavors = with pkgs.kconfigs; [ common xfs ];
  };

  kernel.kconfig = with pkgs.lib.kernel; {
    XFS_FS = y;
    NR_CPUS = 64;
    DEBUG_INFO = true;
  };
}
`

	fetcher := &fakeFetcher{}
	generator := generate.Generator{Fetcher: fetcher, Curdir: t.TempDir()}

	result, err := generator.Generate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, expected, string(result.Artifact))
	assert.Empty(t, result.Args)
	assert.Empty(t, result.Env)

	expectedCalls := []fetch{
		{config.DefaultXfstestsRepo, "xt1"},
		{"https://example.com/linux.git", "kh1"},
		{config.DefaultXfsprogsRepo, "xp1"},
		{config.DefaultKernelRepo, "k1"},
	}
	assert.Equal(t, expectedCalls, fetcher.calls, "fetch order, headers fetched once")

	t.Run("idempotent", func(t *testing.T) {
		again, err := generator.Generate(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, result, again)
	})
}

func TestGenerator_Generate_XfstestsDefaultRepo(t *testing.T) {
	fetcher := &fakeFetcher{}
	generator := generate.Generator{Fetcher: fetcher, Curdir: t.TempDir()}

	cfg := &config.Config{
		Name:     "test",
		Xfstests: &config.XfstestsConfig{Rev: "abc123"},
	}

	result, err := generator.Generate(context.Background(), cfg)
	require.NoError(t, err)

	assert.Equal(t, []fetch{{config.DefaultXfstestsRepo, "abc123"}}, fetcher.calls)
	assert.Contains(t, string(result.Artifact), "services.xfstests.src = src:abc123;\n")
}

func TestGenerator_Generate_RelativeHooks(t *testing.T) {
	dir := t.TempDir()
	generator := generate.Generator{Curdir: dir}

	cfg := &config.Config{
		Name:     "test",
		Xfstests: &config.XfstestsConfig{Hooks: "hooks dir"},
	}

	result, err := generator.Generate(context.Background(), cfg)
	require.NoError(t, err)

	expected := `services.xfstests.hooks = /. + "` + filepath.Join(dir, "hooks dir") + `";`
	assert.Contains(t, string(result.Artifact), expected)
}

func TestGenerator_Generate_Kconfig(t *testing.T) {
	tests := []struct {
		name          string
		options       config.KernelOptions
		expected      string
		expectedField string
	}{
		{
			name:     "prefix stripped and value bare",
			options:  config.KernelOptions{{Name: "CONFIG_XFS_FS", Value: "y"}},
			expected: "    XFS_FS = y;\n",
		},
		{
			name:     "quotes stripped",
			options:  config.KernelOptions{{Name: "CONFIG_CMDLINE", Value: `"console=ttyS0"`}},
			expected: "    CMDLINE = console=ttyS0;\n",
		},
		{
			name:          "missing prefix",
			options:       config.KernelOptions{{Name: "XFS_FS", Value: "y"}},
			expectedField: "kernel.config.XFS_FS",
		},
		{
			name:          "prefix only",
			options:       config.KernelOptions{{Name: "CONFIG_", Value: "y"}},
			expectedField: "kernel.config.CONFIG_",
		},
		{
			name:          "empty value",
			options:       config.KernelOptions{{Name: "CONFIG_XFS_FS", Value: ""}},
			expectedField: "kernel.config.CONFIG_XFS_FS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			generator := generate.Generator{Fetcher: fetcher, Curdir: t.TempDir()}

			cfg := &config.Config{
				Name:   "test",
				Kernel: &config.KernelConfig{Config: tt.options},
			}

			result, err := generator.Generate(context.Background(), cfg)
			assert.Empty(t, fetcher.calls)

			if tt.expectedField != "" {
				var validationErr *config.ValidationError
				require.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.expectedField, validationErr.Field)

				return
			}

			require.NoError(t, err)
			assert.Contains(t, string(result.Artifact), tt.expected)
		})
	}
}

func TestGenerator_Generate_Prebuild(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "linux"), 0o755))

	cfg := &config.Config{
		Name: "test",
		Kernel: &config.KernelConfig{
			Prebuild: "linux",
			Rev:      "k1",
			Version:  "6.13",
		},
	}

	t.Run("exists", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		generator := generate.Generator{Fetcher: fetcher, Curdir: dir}

		result, err := generator.Generate(context.Background(), cfg)
		require.NoError(t, err)

		assert.Empty(t, fetcher.calls)
		assert.Equal(t, emptyModule, string(result.Artifact))
		assert.Equal(t, []string{generate.ImpureArg}, result.Args)
		assert.Equal(t, []string{
			"NIXPKGS_QEMU_KERNEL_test=" + filepath.Join(dir, "linux"),
		}, result.Env)
	})

	t.Run("missing", func(t *testing.T) {
		generator := generate.Generator{Fetcher: &fakeFetcher{}, Curdir: t.TempDir()}

		_, err := generator.Generate(context.Background(), cfg)

		var validationErr *config.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "kernel.prebuild", validationErr.Field)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestGenerator_Generate_FetchErrors(t *testing.T) {
	errFetch := errors.New("fetch failed")

	cfg := &config.Config{
		Name:     "test",
		Kernel:   &config.KernelConfig{Rev: "k1", Version: "6.13"},
		Xfstests: &config.XfstestsConfig{Rev: "xt1"},
	}

	t.Run("fetcher error", func(t *testing.T) {
		fetcher := &fakeFetcher{errs: map[string]error{"xt1": errFetch}}
		generator := generate.Generator{Fetcher: fetcher, Curdir: t.TempDir()}

		_, err := generator.Generate(context.Background(), cfg)
		require.ErrorIs(t, err, errFetch)
		assert.Len(t, fetcher.calls, 1, "no fetch after failure")
	})

	t.Run("no fetcher", func(t *testing.T) {
		generator := generate.Generator{Curdir: t.TempDir()}

		_, err := generator.Generate(context.Background(), cfg)
		require.ErrorIs(t, err, generate.ErrNoFetcher)
	})
}

func TestGenerator_Generate_Formatter(t *testing.T) {
	cfg := &config.Config{Name: "test"}

	t.Run("applied", func(t *testing.T) {
		generator := generate.Generator{
			Curdir: t.TempDir(),
			Formatter: formatterFunc(func(code []byte) ([]byte, error) {
				return []byte(strings.ToUpper(string(code))), nil
			}),
		}

		result, err := generator.Generate(context.Background(), cfg)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(emptyModule), string(result.Artifact))
	})

	t.Run("error", func(t *testing.T) {
		errFormat := errors.New("format failed")
		generator := generate.Generator{
			Curdir: t.TempDir(),
			Formatter: formatterFunc(func([]byte) ([]byte, error) {
				return nil, errFormat
			}),
		}

		_, err := generator.Generate(context.Background(), cfg)
		require.ErrorIs(t, err, errFormat)
	})
}
