// Command vapidkeys prints a fresh VAPID key pair in .env form.
package main

import (
	"fmt"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.WithError(err).Fatal("Failed to generate VAPID keys")
	}

	subscriber := "mailto:admin@friendzone.local"
	if len(os.Args) > 1 {
		subscriber = os.Args[1]
	}

	fmt.Printf("VAPID_PUBLIC_KEY=%s\n", publicKey)
	fmt.Printf("VAPID_PRIVATE_KEY=%s\n", privateKey)
	fmt.Printf("VAPID_SUBSCRIBER=%s\n", subscriber)
}
