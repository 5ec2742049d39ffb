// Package headers acquires a normalized response header map for a URL.
//
// Acquisition is modelled as an ordered list of HeaderSource strategies.
// DirectSource reads structured headers off a HEAD response; RawSource asks a
// RawTransport for the raw header block, waits for the headers-received
// milestone, aborts the transfer and parses the block with ParseBlock.
// Resolver tries the sources in order until one yields headers.
package headers
