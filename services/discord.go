package services

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

const (
	DefaultDiscordPrefix = "!medi "
	discordChunkSize     = 1900
)

// DiscordService answers chat commands in Discord channels
type DiscordService struct {
	session       *discordgo.Session
	chatbot       *Chatbot
	commandPrefix string
	enabled       bool
	startTime     time.Time
}

// NewDiscordService creates a Discord service. An empty token leaves it
// disabled.
func NewDiscordService(chatbot *Chatbot, token, commandPrefix string) *DiscordService {
	if commandPrefix == "" {
		commandPrefix = DefaultDiscordPrefix
	}

	service := &DiscordService{
		chatbot:       chatbot,
		commandPrefix: commandPrefix,
		startTime:     time.Now(),
	}

	if token == "" {
		log.Printf("[discord] disabled: DISCORD_BOT_TOKEN not set")
		return service
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Printf("[discord] error creating session: %v", err)
		return service
	}

	service.session = session

	session.AddHandler(func(s *discordgo.Session, event *discordgo.Ready) {
		log.Printf("[discord] online as %s in %d servers", event.User.Username, len(event.Guilds))
	})
	session.AddHandler(service.messageCreate)
	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

	service.enabled = true
	log.Printf("[discord] initialized with prefix %q", commandPrefix)

	return service
}

// Start opens the gateway connection
func (d *DiscordService) Start() error {
	if !d.enabled {
		return fmt.Errorf("discord service not enabled (missing bot token)")
	}

	if err := d.session.Open(); err != nil {
		return fmt.Errorf("error opening Discord connection: %w", err)
	}

	log.Printf("[discord] started, use '%s<message>' in a channel", d.commandPrefix)
	return nil
}

// Stop closes the Discord bot connection
func (d *DiscordService) Stop() error {
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

// Reply builds the Discord replies for a message, or nil if the message is
// not addressed to the bot.
func (d *DiscordService) Reply(content string) []string {
	if !strings.HasPrefix(content, d.commandPrefix) {
		return nil
	}

	message := strings.TrimSpace(content[len(d.commandPrefix):])
	if message == "" {
		return []string{fmt.Sprintf("Please provide a message after `%s`", strings.TrimSpace(d.commandPrefix))}
	}

	_, text := d.chatbot.Respond(message)
	answer := RenderAnswer(text, d.chatbot.KnowledgeBase().Group)
	return splitMessage(answer, discordChunkSize)
}

func (d *DiscordService) messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	replies := d.Reply(m.Content)
	if len(replies) == 0 {
		return
	}

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		log.Printf("[discord] typing indicator failed: %v", err)
	}

	for i, chunk := range replies {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			log.Printf("[discord] error sending message: %v", err)
			return
		}
		if i < len(replies)-1 {
			time.Sleep(200 * time.Millisecond)
		}
	}

	log.Printf("[discord] answered %s in channel %s", m.Author.Username, m.ChannelID)
}

// splitMessage splits a message into chunks of at most maxLength bytes,
// preferring line and word boundaries.
func splitMessage(message string, maxLength int) []string {
	if len(message) <= maxLength {
		return []string{message}
	}

	var chunks []string
	for len(message) > maxLength {
		splitIndex := maxLength
		if i := strings.LastIndex(message[:maxLength], "\n"); i > maxLength/2 {
			splitIndex = i
		} else if i := strings.LastIndex(message[:maxLength], " "); i > maxLength/2 {
			splitIndex = i
		} else {
			for splitIndex > 0 && !isRuneStart(message[splitIndex]) {
				splitIndex--
			}
		}

		chunks = append(chunks, message[:splitIndex])
		message = strings.TrimLeft(message[splitIndex:], " \n")
	}

	if len(message) > 0 {
		chunks = append(chunks, message)
	}

	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

// IsEnabled returns whether the Discord service is enabled
func (d *DiscordService) IsEnabled() bool {
	return d.enabled
}

// GetStatus returns the current status of the Discord service
func (d *DiscordService) GetStatus() map[string]interface{} {
	status := map[string]interface{}{
		"enabled":        d.enabled,
		"command_prefix": d.commandPrefix,
		"uptime":         time.Since(d.startTime).Round(time.Second).String(),
	}

	switch {
	case d.enabled && d.session != nil && d.session.State != nil && d.session.State.User != nil:
		status["status"] = "connected"
		status["user"] = d.session.State.User.Username
		status["guilds"] = len(d.session.State.Guilds)
	case d.enabled:
		status["status"] = "initialized_not_started"
	default:
		status["status"] = "disabled"
	}

	return status
}
