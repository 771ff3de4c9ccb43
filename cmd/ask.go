package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"medichat/config"
	"medichat/models"
	"medichat/services"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var askCmd = &cobra.Command{
	Use:   "ask <message...>",
	Short: "Ask the chatbot a question and watch the answer stream",
	Long: `Ask classifies the message, streams the answer and types it out in the
terminal. Cards are printed where they arrive in the stream.

By default the answer is produced in-process. Use --server to stream it from
a running server instead.

Examples:
  medichat ask 안녕하세요
  medichat ask --fast 회사 소개 부탁드려요
  medichat ask --server http://localhost:8080 --mode word hello`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("server", "", "Base URL of a running server")
	askCmd.Flags().StringP("mode", "m", "", "Streaming mode: chunk or word")
	askCmd.Flags().Int("chunk-size", 0, "Pieces per frame in chunk mode")
	askCmd.Flags().Bool("fast", false, "Disable streaming and typing delays")
	askCmd.Flags().Bool("render", false, "Render the final answer as Markdown when stdout is a terminal")
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")
	server, _ := cmd.Flags().GetString("server")
	mode, _ := cmd.Flags().GetString("mode")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	fast, _ := cmd.Flags().GetBool("fast")
	render, _ := cmd.Flags().GetBool("render")

	req := models.ChatRequest{Message: message, Mode: models.StreamMode(mode), ChunkSize: chunkSize}
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return fmt.Errorf("invalid mode %q (want chunk or word)", mode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	scale := 1.0
	if fast {
		scale = 0
	}

	out := cmd.OutOrStdout()
	printer := newAnswerPrinter(ctx, out, services.NewTypewriter(out, scale))

	var err error
	if server != "" {
		err = askServer(ctx, server, req, printer.WriteFrame)
	} else {
		err = askLocal(ctx, req, scale, printer)
	}
	fmt.Fprintln(out)
	if err != nil {
		return err
	}
	if rerr := printer.answer.Err(); rerr != nil {
		return rerr
	}

	if render && isTerminal(out) {
		fmt.Fprintln(out, color.New(color.Faint).Sprint("──────── rendered ────────"))
		fmt.Fprint(out, renderMarkdown(services.RenderAnswer(printer.answer.Text(), printer.answer.Card)))
	}
	return nil
}

func askLocal(ctx context.Context, req models.ChatRequest, scale float64, sink services.FrameSink) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	kb, err := loadKnowledgeBase(cfg)
	if err != nil {
		return err
	}

	chatbot := services.NewChatbot(kb, services.NewPacer(scale), cfg.Stream.Mode, cfg.Stream.ChunkSize)
	opts := services.StreamOptions{StreamID: "cli", Mode: req.Mode, ChunkSize: req.ChunkSize}
	_, err = chatbot.Stream(ctx, req.Message, opts, sink)
	return err
}

func askServer(ctx context.Context, baseURL string, req models.ChatRequest, fn func(models.Frame) error) error {
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e models.ErrorResponse
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(data, &e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	return services.ReadSSE(ctx, resp.Body, fn)
}

// answerPrinter types text frames and prints cards as they arrive while
// reassembling the full answer.
type answerPrinter struct {
	out    io.Writer
	tw     *services.Typewriter
	answer *services.Reassembler
	ctx    context.Context
}

func newAnswerPrinter(ctx context.Context, out io.Writer, tw *services.Typewriter) *answerPrinter {
	return &answerPrinter{out: out, tw: tw, answer: services.NewReassembler(), ctx: ctx}
}

func (p *answerPrinter) WriteFrame(frame models.Frame) error {
	if err := p.answer.Apply(frame); err != nil {
		return err
	}

	switch frame.Type {
	case models.FrameText:
		return p.tw.Type(p.ctx, frame.Text())
	case models.FrameCard:
		group, _ := frame.Content.(models.CardGroup)
		fmt.Fprintln(p.out)
		printCardGroup(p.out, group)
	case models.FrameError:
		fmt.Fprintln(p.out, color.RedString("error: %s", frame.Text()))
	}
	return nil
}

func printCardGroup(w io.Writer, group models.CardGroup) {
	if group.Title != "" {
		fmt.Fprintln(w, color.New(color.FgMagenta, color.Bold).Sprint(group.Title))
	}
	for _, card := range group.Cards {
		printCard(w, card)
	}
}

func printCard(w io.Writer, card models.Card) {
	title := color.New(color.FgCyan, color.Bold)
	faint := color.New(color.Faint)

	fmt.Fprintf(w, "  %s %s\n", card.Icon, title.Sprint(card.Title))
	if card.Description != "" {
		fmt.Fprintf(w, "     %s\n", card.Description)
	}
	if bullets := card.Bullets(); len(bullets) > 0 {
		fmt.Fprintf(w, "     %s\n", faint.Sprint(strings.Join(bullets, " · ")))
	}
	if card.Price != "" {
		fmt.Fprintf(w, "     %s\n", color.GreenString(card.Price))
	}
	if card.Link != "" {
		fmt.Fprintf(w, "     %s\n", faint.Sprint(card.Link))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderMarkdown(content string) string {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w - 4
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(width))
	if err != nil {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
