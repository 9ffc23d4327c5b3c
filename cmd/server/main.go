package main

import (
	"github.com/dwarvesf/ape-bridge-backend/internal/server"
)

// @title ApeBridge API
// @version 1.0
// @description Bridge transaction intake and confirmation tracking between Ethereum and ApeChain
// @BasePath /api/v1
func main() {
	server.Init()
}
