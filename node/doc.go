// Package node implements the Node/Channel application-facing API: channel
// allocation and configuration, the channel state machine, acknowledged and
// burst sends with single-retry failure propagation, and the promiscuous
// scan core built on top of package transport's classified message stream.
package node
