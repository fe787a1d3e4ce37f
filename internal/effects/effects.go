// SPDX-License-Identifier: MIT

// Package effects holds the built-in visual effects. Each effect
// registers itself with the default registry from init, so importing
// this package for side effects is enough to populate the catalog.
package effects
