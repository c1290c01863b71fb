// Command fetchctl is the operator tool for a fetchbox deployment: it runs
// the resolver and format policy locally and can sweep storage by hand.
package main

func main() {
	Execute()
}
