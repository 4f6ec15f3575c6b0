// Package main provides the entry point for castboard, the administrative
// dashboard of a nightlife venue management system. It runs a Fiber web
// server that manages stores, casts and their shifts, and connects each
// store to the BASE commerce platform through OAuth. Data is persisted
// with gorm.
package main
