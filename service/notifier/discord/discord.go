package discord

import (
	"fmt"
	"math/big"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"

	"github.com/x-xyz/treemarket/base/ctx"
	"github.com/x-xyz/treemarket/domain/event"
)

const nativeDecimals = 18

type Config struct {
	BotKey    string
	ChannelId string
	// Types limits which events are posted; empty posts all
	Types []event.Type
}

// sender is the part of discordgo.Session the notifier calls
type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed) (*discordgo.Message, error)
}

type impl struct {
	channelId string
	types     map[event.Type]bool
	session   sender
}

func New(cfg Config) (event.Notifier, error) {
	session, err := discordgo.New(fmt.Sprintf("Bot %s", cfg.BotKey))
	if err != nil {
		return nil, err
	}
	return newWithSender(cfg, session), nil
}

func newWithSender(cfg Config, s sender) *impl {
	types := map[event.Type]bool{}
	for _, t := range cfg.Types {
		types[t] = true
	}
	return &impl{channelId: cfg.ChannelId, types: types, session: s}
}

func (im *impl) Notify(c ctx.Ctx, e *event.Event) error {
	if len(im.types) > 0 && !im.types[e.Type] {
		return nil
	}
	if _, err := im.session.ChannelMessageSendEmbed(im.channelId, toEmbed(e)); err != nil {
		c.WithField("err", err).WithField("event", e.Id).Error("failed to ChannelMessageSendEmbed")
		return err
	}
	return nil
}

var titles = map[event.Type]string{
	event.TypeBidPlaced:       "New bid",
	event.TypeBidRefunded:     "Bid outbid and refunded",
	event.TypeBidCancelled:    "Bid cancelled",
	event.TypeBidRejected:     "Bid rejected",
	event.TypeBidAccepted:     "Item sold!",
	event.TypeTreasuryUpdated: "Treasury updated",
}

func toEmbed(e *event.Event) *discordgo.MessageEmbed {
	title, ok := titles[e.Type]
	if !ok {
		title = string(e.Type)
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Actor", Value: string(e.Actor)},
	}
	if e.Contract != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Asset", Value: fmt.Sprintf("%s #%s", e.Contract, e.TokenId)})
	}
	if e.Counterparty != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Counterparty", Value: string(e.Counterparty)})
	}
	if e.Price != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Price", Value: formatPrice(e.Price)})
	}

	return &discordgo.MessageEmbed{
		Title:     title,
		Fields:    fields,
		Timestamp: e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// formatPrice renders base units as whole currency
func formatPrice(raw string) string {
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return raw
	}
	return decimal.NewFromBigInt(n, -nativeDecimals).String() + " ETH"
}
