// Scribe is a local CLI that asks a coding-assistant agent to write commit
// messages for your changes.
//
// It signs in to the agent through a browser handshake, orders the changed
// files so the oldest edits come first, and writes the agent's message to
// stdout or to the commit message file git hands a prepare-commit-msg hook.
//
// Usage:
//
//	scribe auth login                 # authorize with the agent
//	scribe auth status                # show whether scribe is signed in
//	scribe commit-msg                 # print a message for staged changes
//	scribe commit-msg --write FILE    # fill in a commit message file
//	scribe hook install               # run on every plain git commit
//
// See https://github.com/dshills/scribe for full documentation.
package main
