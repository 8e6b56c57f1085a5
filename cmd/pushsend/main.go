// Command pushsend sends a notification to a subscription saved from the
// agent's /api/subscribe call.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	wp "github.com/smartsonnette/webpush-agent/webpush"
)

var (
	flagSubscription = flag.String("s", "subscription.json", "path to the subscription JSON")
	flagTitle        = flag.String("title", "Sonnette", "notification title")
	flagBody         = flag.String("body", "Quelqu'un sonne à la porte", "notification body")
	flagIcon         = flag.String("icon", "", "notification icon, the agent default when empty")
	flagSubscriber   = flag.String("subscriber", "admin@example.com", "VAPID subscriber contact")
	flagGenKeys      = flag.Bool("genkeys", false, "print a new VAPID key pair and exit")
)

func main() {
	flag.Parse()
	log := zap.Must(zap.NewDevelopment())
	defer func() { _ = log.Sync() }()

	if *flagGenKeys {
		private, public, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatal("generate keys", zap.Error(err))
		}
		fmt.Printf("VAPID_PUBLIC_KEY=%s\nVAPID_PRIVATE_KEY=%s\n", public, private)
		return
	}

	_ = godotenv.Load()
	public, private := os.Getenv("VAPID_PUBLIC_KEY"), os.Getenv("VAPID_PRIVATE_KEY")
	if public == "" || private == "" {
		log.Fatal("VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY must be set")
	}

	sub, err := loadSubscription(*flagSubscription)
	if err != nil {
		log.Fatal("load subscription", zap.Error(err))
	}

	payload, err := json.Marshal(wp.Payload{Title: *flagTitle, Body: *flagBody, Icon: *flagIcon})
	if err != nil {
		log.Fatal("marshal payload", zap.Error(err))
	}

	res, err := webpush.SendNotification(payload, sub, &webpush.Options{
		Subscriber:      *flagSubscriber,
		VAPIDPublicKey:  public,
		VAPIDPrivateKey: private,
		TTL:             60,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		log.Fatal("send notification", zap.Error(err))
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(res.Body)
	log.Info("sent", zap.Int("status", res.StatusCode), zap.ByteString("response", body))
}

func loadSubscription(path string) (*webpush.Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s wp.Subscription
	if err = json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &webpush.Subscription{
		Endpoint: s.Endpoint,
		Keys: webpush.Keys{
			P256dh: s.Keys.P256DH,
			Auth:   s.Keys.Auth,
		},
	}, nil
}
