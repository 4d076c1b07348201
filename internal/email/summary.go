package email

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"whist-server/pkg/scorekeeper"
	"whist-server/pkg/whist"

	"github.com/sirupsen/logrus"
)

const summaryTemplate = "game_summary.html"

type sender interface {
	SendSimple(to, subject, msg string) error
}

// RecipientLookup returns the email address of a user
type RecipientLookup func(ctx context.Context, userID int64) (string, error)

// SummaryNotifier mails the final ranking to the owner of a game once it is over
type SummaryNotifier struct {
	sender    sender
	templates *Template
	lookup    RecipientLookup
	host      string
	wg        sync.WaitGroup
}

var _ scorekeeper.Notifier = (*SummaryNotifier)(nil)

type summaryData struct {
	Winners     []string
	Ranking     whist.Ranking
	TotalRounds int
	Created     time.Time
	URL         string
}

// NewSummaryNotifier returns a new notifier
// host is the base URL of the web client used for the link to the scores
func NewSummaryNotifier(s sender, templates *Template, lookup RecipientLookup, host string) *SummaryNotifier {
	return &SummaryNotifier{
		sender:    s,
		templates: templates,
		lookup:    lookup,
		host:      strings.TrimRight(host, "/"),
	}
}

// RoundAccepted does nothing, only finished games are mailed
func (n *SummaryNotifier) RoundAccepted(game *whist.Game, roundIndex int) {}

// GameTerminated mails the summary in the background
func (n *SummaryNotifier) GameTerminated(game *whist.Game) {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		log := logrus.WithField("gameID", game.ID())
		if err := n.send(context.Background(), game); err != nil {
			log.WithError(err).Error("could not send game summary")
			return
		}

		log.Info("sent game summary")
	}()
}

// Wait blocks until the pending summaries are sent
func (n *SummaryNotifier) Wait() {
	n.wg.Wait()
}

func (n *SummaryNotifier) send(ctx context.Context, game *whist.Game) error {
	to, err := n.lookup(ctx, game.OwnerID())
	if err != nil {
		return err
	}

	ranking := game.Ranking()
	data := summaryData{
		Winners:     winners(ranking),
		Ranking:     ranking,
		TotalRounds: game.TotalRounds(),
		Created:     game.Created(),
		URL:         fmt.Sprintf("%s/game/%s/scores", n.host, game.ID()),
	}

	msg, err := n.templates.RenderTemplate(summaryTemplate, data)
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Whist game over: %s won", strings.Join(data.Winners, " & "))
	return n.sender.SendSimple(to, subject, msg)
}

func winners(ranking whist.Ranking) []string {
	var names []string
	for _, entry := range ranking {
		if entry.Position != 1 {
			break
		}

		names = append(names, entry.Player)
	}

	return names
}
