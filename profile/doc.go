// Package profile defines the device-profile decoder collaborator
// interface and the common-page decoder every profile shares, plus worked
// per-device decoders (see the heartrate subpackage).
package profile
