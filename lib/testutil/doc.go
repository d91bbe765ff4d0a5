// Copyright 2026 The Cuebridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil holds small helpers shared by Cuebridge tests.
// The channel helpers encapsulate the timeout safety valve pattern so
// individual tests never hang on a channel that will not deliver.
package testutil
