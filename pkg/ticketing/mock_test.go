package ticketing

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Jacobbrewer1/discordgo"
	"github.com/flimando/porter/pkg/entities"
	"go.mongodb.org/mongo-driver/mongo"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func notFoundErr() error {
	return &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownChannel},
	}
}

// memTicketDal is an in-memory ITicketDal for tests.
type memTicketDal struct {
	mu      sync.Mutex
	tickets map[string]*entities.Ticket

	countErr error
}

func newMemTicketDal() *memTicketDal {
	return &memTicketDal{tickets: make(map[string]*entities.Ticket)}
}

func ticketKey(guildID, channelID string) string {
	return guildID + "/" + channelID
}

func (m *memTicketDal) SaveTicket(_ context.Context, ticket *entities.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *ticket
	m.tickets[ticketKey(ticket.GuildID, ticket.ChannelID)] = &cp
	return nil
}

func (m *memTicketDal) GetTicket(_ context.Context, guildID, channelID string) (*entities.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketKey(guildID, channelID)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *t
	return &cp, nil
}

func (m *memTicketDal) DeleteTicket(_ context.Context, guildID, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ticketKey(guildID, channelID)
	_, ok := m.tickets[key]
	delete(m.tickets, key)
	return ok, nil
}

func (m *memTicketDal) ListGuildTickets(_ context.Context, guildID string) ([]*entities.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Ticket
	for _, t := range m.tickets {
		if t.GuildID == guildID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memTicketDal) ListTickets(_ context.Context) ([]*entities.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Ticket
	for _, t := range m.tickets {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memTicketDal) CountUserTickets(_ context.Context, guildID, ownerID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return 0, m.countErr
	}
	var count int64
	for _, t := range m.tickets {
		if t.GuildID == guildID && t.OwnerID == ownerID {
			count++
		}
	}
	return count, nil
}

func (m *memTicketDal) AttachControlMessage(_ context.Context, guildID, channelID, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[ticketKey(guildID, channelID)]
	if !ok {
		return nil
	}
	t.ControlMessageID = messageID
	return nil
}

// memPanelDal is an in-memory IPanelDal for tests.
type memPanelDal struct {
	mu     sync.Mutex
	panels map[string]*entities.Panel
}

func newMemPanelDal() *memPanelDal {
	return &memPanelDal{panels: make(map[string]*entities.Panel)}
}

func (m *memPanelDal) SavePanel(_ context.Context, panel *entities.Panel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *panel
	m.panels[panel.GuildID] = &cp
	return nil
}

func (m *memPanelDal) GetPanel(_ context.Context, guildID string) (*entities.Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.panels[guildID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *p
	return &cp, nil
}

func (m *memPanelDal) RemovePanel(_ context.Context, guildID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.panels, guildID)
	return nil
}

func (m *memPanelDal) ListPanels(_ context.Context) ([]*entities.Panel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entities.Panel
	for _, p := range m.panels {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// memConfigDal is an IGuildConfigDal that hands out defaults.
type memConfigDal struct {
	configs map[string]*entities.GuildConfig
}

func (m *memConfigDal) GetGuildConfig(_ context.Context, guildID string) *entities.GuildConfig {
	if m.configs != nil {
		if cfg, ok := m.configs[guildID]; ok {
			return cfg
		}
	}
	return entities.DefaultGuildConfig(guildID)
}

func (m *memConfigDal) SaveGuildConfig(_ context.Context, cfg *entities.GuildConfig) error {
	if m.configs == nil {
		m.configs = make(map[string]*entities.GuildConfig)
	}
	m.configs[cfg.ID] = cfg
	return nil
}

// fakeTransport is a scriptable Transport for tests.
type fakeTransport struct {
	mu sync.Mutex

	channels map[string]*discordgo.Channel
	// messages is keyed channelID/messageID.
	messages map[string]*discordgo.Message
	// latest is keyed channelID and holds the newest message.
	latest map[string]*discordgo.Message

	channelErr map[string]error

	nextMessageID int
	sent          []*discordgo.Message
	edits         []*discordgo.MessageEdit
	deleted       []string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		channels:   make(map[string]*discordgo.Channel),
		messages:   make(map[string]*discordgo.Message),
		latest:     make(map[string]*discordgo.Message),
		channelErr: make(map[string]error),
	}
}

func (f *fakeTransport) addChannel(id string) {
	f.channels[id] = &discordgo.Channel{ID: id}
}

func (f *fakeTransport) addMessage(channelID, messageID string, ts time.Time) {
	msg := &discordgo.Message{ID: messageID, ChannelID: channelID, Timestamp: ts}
	f.messages[channelID+"/"+messageID] = msg
	f.latest[channelID] = msg
}

func (f *fakeTransport) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.channelErr[channelID]; ok {
		return nil, err
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, notFoundErr()
	}
	return ch, nil
}

func (f *fakeTransport) ChannelDelete(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, notFoundErr()
	}
	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return ch, nil
}

func (f *fakeTransport) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[channelID+"/"+messageID]
	if !ok {
		return nil, notFoundErr()
	}
	return msg, nil
}

func (f *fakeTransport) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.messages[m.Channel+"/"+m.ID]
	if !ok {
		return nil, notFoundErr()
	}
	f.edits = append(f.edits, m)
	return msg, nil
}

func (f *fakeTransport) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, notFoundErr()
	}
	f.nextMessageID++
	msg := &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", f.nextMessageID),
		ChannelID: channelID,
		Content:   data.Content,
	}
	f.messages[channelID+"/"+msg.ID] = msg
	f.latest[channelID] = msg
	f.sent = append(f.sent, msg)
	return msg, nil
}

func (f *fakeTransport) ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return nil, notFoundErr()
	}
	msg, ok := f.latest[channelID]
	if !ok {
		return nil, nil
	}
	return []*discordgo.Message{msg}, nil
}

func (f *fakeTransport) ChannelPermissionSet(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.channels[channelID]; !ok {
		return notFoundErr()
	}
	return nil
}

func (f *fakeTransport) GuildMember(guildID, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID}}, nil
}
