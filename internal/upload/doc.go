// Package upload implements the chunked media upload protocol client for the
// X API.  A payload of arbitrary size is split into bounded-size segments and
// driven through the three-phase remote handshake:
//
//	initialize -> append (one call per segment, in order) -> finalize
//
// The remote service reconstructs the payload by concatenating segments in
// index order, so segments are always sent strictly sequentially with
// contiguous indices starting at zero.  Any failure at any phase aborts the
// whole upload; there is no retry and no resumption of a partially appended
// upload (a fresh call to [Uploader.Upload] starts a new session).
//
// Independent uploads are fully independent and may run concurrently; a
// session is never shared between uploads.
package upload
