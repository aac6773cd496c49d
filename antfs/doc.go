// Package antfs implements the ANT-FS file-transfer-over-ANT-channel
// protocol: beacon parsing, the CommandPipe sub-protocol, CRC-16 framing,
// directory/file binary records, and the four-layer session state machine
// (Link, Authentication, Transport, Disconnect) driving download, upload,
// erase, file creation, and time synchronization.
package antfs
