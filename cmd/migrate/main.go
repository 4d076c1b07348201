package main

import (
	"database/sql"
	"time"
	"whist-server/pkg/db"

	"github.com/sirupsen/logrus"
)

func main() {
	waitForDB()
	db.Migrate()
}

// waitForDB gives the database container some time to accept connections
func waitForDB() {
	timeout := time.NewTimer(time.Second * 10)
	for {
		select {
		case <-timeout.C:
			logrus.Fatal("could not connect to database")
		default:
			dbh := func() *sql.DB {
				defer func() { _ = recover() }()
				return db.Instance()
			}()

			if dbh != nil {
				return
			}

			logrus.Debug("waiting for database")
			time.Sleep(time.Millisecond * 500)
		}
	}
}
