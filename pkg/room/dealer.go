package room

import (
	"fmt"
	"sync"
	"whist-server/pkg/whist"

	"github.com/sirupsen/logrus"
)

type state int

const (
	stateClientEvent state = iota
	stateRoundEvent
	stateGameEnded
)

// Dealer keeps the clients watching a single game up to date
type Dealer struct {
	pitBoss *PitBoss
	gameID  string
	clients map[*Client]bool
	lock    sync.RWMutex

	// scoreboard and scores must only be used from the run loop
	scoreboard *Scoreboard
	scores     *whist.Scores

	execInRunLoop chan func()
	stateChanged  chan state
	close         chan bool
}

type clientState struct {
	ConnectedClients int `json:"connectedClients"`
}

// NewDealer creates a new dealer object
// This is called from a blocking state, so it needs to return quickly
func NewDealer(pitBoss *PitBoss, scoreboard *Scoreboard) *Dealer {
	return &Dealer{
		pitBoss:       pitBoss,
		gameID:        scoreboard.GameID,
		scoreboard:    scoreboard,
		clients:       make(map[*Client]bool),
		execInRunLoop: make(chan func(), 256),
		stateChanged:  make(chan state, 256),
		close:         make(chan bool),
	}
}

// Clients will return a slice of connected (at the time) clients
func (d *Dealer) Clients() []*Client {
	d.lock.RLock()
	defer d.lock.RUnlock()

	clients := make([]*Client, 0, len(d.clients))
	for client := range d.clients {
		clients = append(clients, client)
	}

	return clients
}

// StartShift starts the run loop
func (d *Dealer) StartShift() {
	go d.runLoop()
}

func (d *Dealer) runLoop() {
	log := logrus.WithField("gameID", d.gameID)

	log.Debug("creating dealer run loop")
	for {
		select {
		case s := <-d.stateChanged:
			switch s {
			case stateClientEvent:
				d.sendClientState()
			case stateRoundEvent:
				d.sendScoreboard()
			case stateGameEnded:
				d.sendScoreboard()
				d.sendGameEnded()
			}
		case fn := <-d.execInRunLoop:
			fn()
		case <-d.close:
			log.Debug("terminating dealer run loop")
			return
		}
	}
}

// AddClient adds a client
// This method must return quickly
func (d *Dealer) AddClient(client *Client) {
	d.lock.Lock()
	client.dealer = d
	d.clients[client] = true
	d.lock.Unlock()

	d.stateChanged <- stateClientEvent
	d.execInRunLoop <- func() {
		// a client may have loaded the game after the last round was broadcast
		if client.scoreboard.PlayedRounds > d.scoreboard.PlayedRounds {
			d.scoreboard = client.scoreboard
		}

		client.Send(&Response{
			Key:  "scoreboard",
			Data: d.scoreboard,
		})
	}
}

// RemoveClient removes a client
// This method must return quickly
func (d *Dealer) RemoveClient(client *Client) (lastClient bool) {
	d.lock.Lock()
	delete(d.clients, client)
	nClients := len(d.clients)
	d.lock.Unlock()

	if nClients > 0 {
		d.stateChanged <- stateClientEvent
		return false
	}

	return true
}

// EndShift is called when the dealer is no longer needed
func (d *Dealer) EndShift() {
	close(d.close)
}

// RoundAccepted pushes the new scoreboard to the clients
func (d *Dealer) RoundAccepted(scoreboard *Scoreboard) {
	d.execInRunLoop <- func() {
		d.scoreboard = scoreboard
		d.stateChanged <- stateRoundEvent
	}
}

// GameTerminated pushes the final scores to the clients
func (d *Dealer) GameTerminated(scoreboard *Scoreboard, scores *whist.Scores) {
	d.execInRunLoop <- func() {
		d.scoreboard = scoreboard
		d.scores = scores
		d.stateChanged <- stateGameEnded
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendClientState() {
	clients := d.Clients()
	for _, client := range clients {
		client.Send(&Response{
			Key:  "clientState",
			Data: clientState{ConnectedClients: len(clients)},
		})
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendScoreboard() {
	for _, client := range d.Clients() {
		if !client.Send(&Response{Key: "scoreboard", Data: d.scoreboard}) {
			logrus.WithField("client", client.String()).Warn("could not send scoreboard, buffer is full")
		}
	}
}

// NOTE: must only be called from the run loop
func (d *Dealer) sendGameEnded() {
	for _, client := range d.Clients() {
		client.Send(&Response{
			Key:  "gameEnded",
			Data: d.scores,
		})
	}
}

// ReceivedMessage is called when a client sends a message to the server
func (d *Dealer) ReceivedMessage(c *Client, msg *PayloadIn) {
	switch msg.Action {
	case "ping":
		c.Send(OK(msg.Context))
	case "scoreboard":
		d.execInRunLoop <- func() {
			c.Send(&Response{
				Key:     "scoreboard",
				Context: msg.Context,
				Data:    d.scoreboard,
			})
		}
	default:
		logrus.WithField("msg", msg).Warn("unknown message")
		c.Send(newErrorResponse(msg.Context, fmt.Errorf("unknown action: %q", msg.Action)))
	}
}
