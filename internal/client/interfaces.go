// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Execute runs the command selected by the process arguments and blocks
	// until it returns.
	Execute(ctx context.Context) error
}

// Prompter reads answers from the user.
type Prompter interface {
	// ReadLine prints prompt and returns the next line without the line
	// terminator. io.EOF means the input is exhausted.
	ReadLine(prompt string) (string, error)

	// ReadSecret is ReadLine without echo when the input is a terminal.
	ReadSecret(prompt string) (string, error)
}
