// Command canopy plays screen transition scripts against canopy containers.
package main

func main() {
	Execute()
}
