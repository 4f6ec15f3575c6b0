// Package uniuri generates random strings for session ids and OAuth nonces.
package uniuri
