// Package main is the entry point for the Lion's Cafe API server.
package main

func main() {
	Execute()
}
