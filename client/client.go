// Package client implements the remote translation service contract.
package client

import "github.com/ZaguanLabs/ghostreader"

// Client is an alias to the main package interface for convenience.
type Client = ghostreader.Client

// Response is an alias to the main package type.
type Response = ghostreader.Response

// Missings is an alias to the main package type.
type Missings = ghostreader.Missings
