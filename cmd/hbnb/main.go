package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/hbnbclone/hbnb/pkg/hbnb"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := hbnb.Main(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
