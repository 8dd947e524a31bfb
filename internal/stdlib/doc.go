// Copyright (c) 2024 Michael D Henderson. All rights reserved.

// Package stdlib provides small filesystem predicates (directory vs
// regular-file existence checks, against either the OS filesystem or
// an fs.FS) used by the CLI layer.
package stdlib
