// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data under the paperchat home directory.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//   - PromptStore: user-editable prompt templates
package file
