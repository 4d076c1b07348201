package room

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Client is a client connected to the server via websockets
type Client struct {
	// Conn is the underlying websocket connection
	Conn *websocket.Conn

	// send is a channel for sending messages to the client
	send chan interface{}

	// Close is a channel for closing the client
	Close chan string

	// CloseError contains the reason why the connection was closed
	CloseError error

	dealer *Dealer

	userID     int64
	scoreboard *Scoreboard
}

// NewClient returns a new client watching the game shown on scoreboard
func NewClient(conn *websocket.Conn, userID int64, scoreboard *Scoreboard) *Client {
	return &Client{
		send:       make(chan interface{}, 256),
		Close:      make(chan string),
		Conn:       conn,
		userID:     userID,
		scoreboard: scoreboard,
	}
}

// Send send a message to the web client
func (c *Client) Send(msg interface{}) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// SendChan returns a read-only channel
func (c *Client) SendChan() <-chan interface{} {
	return c.send
}

// GameID returns the ID of the game being watched
func (c *Client) GameID() string {
	return c.scoreboard.GameID
}

// String returns a traceable identifier for the user and game
func (c *Client) String() string {
	return fmt.Sprintf("%d:%s", c.userID, c.GameID())
}

// ReceivedMessage is called when the server receives a message from a connected client
func (c *Client) ReceivedMessage(msg *PayloadIn) {
	if c.dealer == nil {
		logrus.WithField("msg", msg).Warn("received message, but dealer not found")
		return
	}

	c.dealer.ReceivedMessage(c, msg)
}
