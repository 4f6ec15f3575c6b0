// Package baseoauth implements the OAuth 2.0 authorization code flow against
// the BASE commerce platform.
//
// The state parameter is the base64url encoding of a small JSON document:
//
//	{"store_id":12,"timestamp":1767200000000,"nonce":"...","signature":"..."}
//
// timestamp is in unix milliseconds and signature is the hex HMAC-SHA256 of
// "store_id|timestamp|nonce". The same value is stored in the short lived
// base_oauth_state cookie; the callback accepts it only if cookie and query
// agree, the signature matches and the state is younger than StateTTL.
package baseoauth
