// cmd/genhash prints the bcrypt hash of its argument, for seeding users by SQL.
package main

import (
	"fmt"
	"os"

	"github.com/garageMitre/garage-mitre-backend-sub000/internal/service"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: genhash <password>")
		os.Exit(2)
	}
	h, err := service.HashPassword(os.Args[1])
	if err != nil {
		panic(err)
	}
	fmt.Println(h)
}
