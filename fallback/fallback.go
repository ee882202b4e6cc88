// Package fallback provides secondary translation sources consulted on cache misses.
package fallback

import "github.com/ZaguanLabs/ghostreader"

// Fallback is an alias to the main package interface.
type Fallback = ghostreader.Fallback

// Options is an alias to the main package type.
type Options = ghostreader.Options
