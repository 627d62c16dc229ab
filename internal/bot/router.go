package bot

import (
	"log/slog"
	"strings"
	"sync"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	"github.com/Proton-105/shulk-bot/internal/bot/keyboard"
)

// Router dispatches commands and callbacks through the middleware chain.
type Router struct {
	mu             sync.RWMutex
	commands       map[string]handlers.Handler
	callbacks      map[string]string
	defaultHandler handlers.Handler
	middlewares    []handlers.Middleware
	log            *slog.Logger
}

// NewRouter builds a Router with empty registries.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands:    make(map[string]handlers.Handler),
		callbacks:   make(map[string]string),
		middlewares: make([]handlers.Middleware, 0),
		log:         log,
	}
}

// RegisterCommand registers a handler for a bot command such as "/daily".
func (r *Router) RegisterCommand(cmd string, h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(cmd)] = h
}

// RegisterCallback routes the callback id unique to the handler of cmd. The
// update is named after cmd, so a menu button shares the command's rate
// limits and metrics.
func (r *Router) RegisterCallback(unique, cmd string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[unique] = strings.ToLower(cmd)
}

// Use appends a middleware to the chain.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// SetDefault sets the fallback handler for unmatched text.
func (r *Router) SetDefault(h handlers.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultHandler = h
}

// Route directs the incoming update to the appropriate handler.
func (r *Router) Route(c telebot.Context) error {
	if c == nil {
		return nil
	}

	if callback := c.Callback(); callback != nil {
		return r.handleCallback(c, callback.Data)
	}

	return r.handleMessage(c)
}

func (r *Router) handleCallback(c telebot.Context, data string) error {
	unique, _, err := keyboard.DecodeCallback(strings.TrimSpace(data))
	if err != nil {
		r.log.Debug("ignoring callback", slog.Any("error", err))
		return c.Respond()
	}

	r.mu.RLock()
	cmd := r.callbacks[unique]
	handler := r.commands[cmd]
	r.mu.RUnlock()

	if handler == nil {
		r.log.Info("no callback handler found", slog.String("data", data))
		return c.Respond()
	}

	handlers.SetCommandName(c, cmd)
	return r.executeHandler(handler, c)
}

func (r *Router) handleMessage(c telebot.Context) error {
	if cmd := ParseCommand(c.Text()); cmd != "" {
		r.mu.RLock()
		handler := r.commands[cmd]
		r.mu.RUnlock()

		if handler != nil {
			handlers.SetCommandName(c, cmd)
			return r.executeHandler(handler, c)
		}
	}

	r.mu.RLock()
	handler := r.defaultHandler
	r.mu.RUnlock()

	if handler != nil {
		return r.executeHandler(handler, c)
	}

	return nil
}

// ParseCommand returns the lowercased command of a message without any
// @botname suffix, or "" when text is not a command.
func ParseCommand(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}

	cmd, _, _ := strings.Cut(fields[0], "@")
	if cmd == "/" {
		return ""
	}

	return strings.ToLower(cmd)
}

func (r *Router) executeHandler(h handlers.Handler, c telebot.Context) error {
	wrapped := r.applyMiddlewares(h)
	if wrapped == nil {
		return nil
	}
	return wrapped(c)
}

// applyMiddlewares wraps the handler with all registered middlewares. The
// first registered middleware runs outermost.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	if h == nil {
		return nil
	}

	r.mu.RLock()
	middlewares := append([]handlers.Middleware(nil), r.middlewares...)
	r.mu.RUnlock()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}
