// Command admin is the operator CLI of the chat service: it manages users
// and chats directly against the configured storage.
package main

func main() {
	Execute()
}
