// Package fetch downloads wiki page sources and mirrors them into the raw
// directory read by the parsers.
//
// Pages are fetched over plain HTTP(S), optionally through a SOCKS5 proxy.
// HTML responses are reduced to the wiki source they carry; plain text
// responses are saved as-is.
package fetch
