// Package sane speaks the SANE (Scanner Access Now Easy) network protocol,
// version 1.0.3, to a remote saned daemon. It opens a control socket,
// enumerates and opens devices, negotiates option descriptors, starts scans,
// and reassembles the record-framed pixel data returned on a second, transient
// data socket into a complete raster image.
//
// Materializing a platform image object from the decoded pixel planes, reading
// ~/.sane/pass-style credential files, and running or embedding a SANE server
// are outside this package; callers are expected to supply credentials via a
// CredentialProvider and consume the Image produced by a scan themselves.
package sane
