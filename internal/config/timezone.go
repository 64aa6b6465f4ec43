package config

import (
	"log"
	"os"
	"time"
)

// NewNotifyLocation loads the timezone used to format session start times in
// notification bodies. Defaults to the deployment region's zone.
func NewNotifyLocation() *time.Location {
	name := os.Getenv("NOTIFY_TIMEZONE")
	if name == "" {
		name = "Asia/Singapore"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Println("Invalid NOTIFY_TIMEZONE", name, "- falling back to local time:", err)
		return time.Local
	}
	return loc
}
