package room

import (
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"

	"github.com/sirupsen/logrus"
)

type gameEvent struct {
	scoreboard *Scoreboard
	scores     *whist.Scores
}

// PitBoss is responsible for dispatching clients to the dealer of their game
// It is told about the rounds saved by the scorekeeper and forwards them to the dealers
type PitBoss struct {
	dealers    map[string]*Dealer
	connect    chan *Client
	disconnect chan *Client
	events     chan gameEvent
}

var _ scorekeeper.Notifier = (*PitBoss)(nil)

// NewPitBoss returns a new dispatch object
func NewPitBoss() *PitBoss {
	return &PitBoss{
		dealers:    make(map[string]*Dealer),
		connect:    make(chan *Client, 256),
		disconnect: make(chan *Client, 256),
		events:     make(chan gameEvent, 256),
	}
}

// StartShift starts the PitBoss run loop
func (p *PitBoss) StartShift() {
	go p.runLoop()
}

func (p *PitBoss) runLoop() {
	for {
		select {
		case client := <-p.connect:
			logrus.WithField("client", client.String()).Debug("client connected")
			dealer, found := p.dealers[client.GameID()]
			if !found {
				dealer = NewDealer(p, client.scoreboard)
				dealer.StartShift()
				p.dealers[client.GameID()] = dealer
			}

			dealer.AddClient(client)
		case client := <-p.disconnect:
			logrus.WithField("client", client.String()).Debug("client disconnected")
			dealer, found := p.dealers[client.GameID()]
			if !found {
				logrus.WithField("gameID", client.GameID()).WithField("type", "exception").Error("game not found")
				continue
			}

			if dealer.RemoveClient(client) {
				dealer.EndShift()
				delete(p.dealers, client.GameID())
			}
		case event := <-p.events:
			dealer, found := p.dealers[event.scoreboard.GameID]
			if !found {
				// nobody is watching
				continue
			}

			if event.scores != nil {
				dealer.GameTerminated(event.scoreboard, event.scores)
			} else {
				dealer.RoundAccepted(event.scoreboard)
			}
		}
	}
}

// ClientConnected is called when a client connects to the server
func (p *PitBoss) ClientConnected(client *Client) {
	p.connect <- client
}

// ClientDisconnected is called when a client disconnects from the server
func (p *PitBoss) ClientDisconnected(client *Client) {
	p.disconnect <- client
}

// RoundAccepted forwards the new scoreboard to the clients watching the game
func (p *PitBoss) RoundAccepted(game *whist.Game, roundIndex int) {
	if game.IsTerminated() {
		// GameTerminated follows with the final scores
		return
	}

	p.publish(gameEvent{scoreboard: NewScoreboard(game)})
}

// GameTerminated forwards the final scores to the clients watching the game
func (p *PitBoss) GameTerminated(game *whist.Game) {
	p.publish(gameEvent{
		scoreboard: NewScoreboard(game),
		scores:     game.Scores(),
	})
}

// publish must not block the scorekeeper
func (p *PitBoss) publish(event gameEvent) {
	select {
	case p.events <- event:
	default:
		logrus.WithField("gameID", event.scoreboard.GameID).Warn("dropping game event, buffer is full")
	}
}
