// Package bot is the console command layer.
//
// A Manager holds the registered commands. Process takes a chat message,
// strips the prefix, resolves the command by name or alias, parses its
// positional options and runs it. Invoke does the same for a command called
// by name with named options. Either way the result is a Reply: plain text
// or an embed.
//
// Commands share the document store through a store.Handle. A command that
// reads then writes must do both inside one Handle.With call.
package bot
