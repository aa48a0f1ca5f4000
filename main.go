// SPDX-License-Identifier: MPL-2.0

// deckhand turns a registry of declarative service modules into deployment
// artifacts. See cmd/deckhand for the CLI surface.
package main

import cmd "deckhand-cli/cmd/deckhand"

func main() {
	cmd.Execute()
}
