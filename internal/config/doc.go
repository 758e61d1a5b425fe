// SPDX-FileCopyrightText: 2025 Tobias Böhm <code@aibor.de>
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config provides the settings model of a kd environment.
//
// The project local settings file (see [FileName]) describes the kernel and
// test suite sources, additional packages, and QEMU options of one
// environment. It is loaded with [Load] and must pass [Config.Validate]
// before anything is generated from it. The per-user global settings file is
// handled by [LoadGlobal].
package config
