package main

import "site-chat-backend/cmd"

func main() {
	cmd.Run()
}
