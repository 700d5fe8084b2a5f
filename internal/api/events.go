package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cha-revelacao/guest-sync/internal/domain"
)

// Storage key caching the resolved canonical event id across restarts.
const eventIDKey = "defaultEventoId"

type eventoDTO struct {
	ID         int64  `json:"id"`
	Titulo     string `json:"titulo"`
	Descricao  string `json:"descricao"`
	DataEvento string `json:"dataEvento"`
	Local      string `json:"local"`
}

type eventoRequest struct {
	Titulo     string `json:"titulo"`
	Descricao  string `json:"descricao"`
	DataEvento string `json:"dataEvento"`
	Local      string `json:"local"`
}

func (c *HttpImpl) ListEvents(ctx context.Context) ([]domain.Event, error) {
	var dtos []eventoDTO
	if err := c.doJSON(ctx, http.MethodGet, "/api/eventos", nil, &dtos, false); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, dto.toDomain())
	}
	return events, nil
}

func (c *HttpImpl) CreateEvent(ctx context.Context, event domain.Event) (domain.Event, error) {
	req := eventoRequest{
		Titulo:     event.Title,
		Descricao:  event.Description,
		DataEvento: formatApiTime(event.Date),
		Local:      event.Local,
	}

	var dto eventoDTO
	if err := c.doJSON(ctx, http.MethodPost, "/api/eventos", req, &dto, true); err != nil {
		return domain.Event{}, err
	}
	return dto.toDomain(), nil
}

func (c *HttpImpl) EnsureValidEvent(ctx context.Context) (int64, error) {
	v, err, _ := c.eventGroup.Do(eventIDKey, func() (interface{}, error) {
		return c.resolveEvent(ctx)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (c *HttpImpl) resolveEvent(ctx context.Context) (int64, error) {
	if raw, ok, err := c.store.Get(ctx, eventIDKey); err == nil && ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			return id, nil
		}
	}

	events, err := c.ListEvents(ctx)
	if err != nil {
		return 0, err
	}

	if id := pickCanonical(events, c.cfg.Event.CanonicalTitle); id > 0 {
		c.cacheEventID(ctx, id)
		return id, nil
	}

	created, err := c.CreateEvent(ctx, domain.Event{
		Title:       c.cfg.Event.CanonicalTitle,
		Description: "Evento criado automaticamente",
		Date:        time.Now(),
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info("Created canonical event", "id", created.ID)
	c.cacheEventID(ctx, created.ID)
	return created.ID, nil
}

// invalidateEvent drops the cached id so the next resolution starts over.
func (c *HttpImpl) invalidateEvent(ctx context.Context) {
	if err := c.store.Delete(ctx, eventIDKey); err != nil {
		c.logger.Warn("Failed to drop cached event id", "error", err)
	}
}

func (c *HttpImpl) cacheEventID(ctx context.Context, id int64) {
	if err := c.store.Set(ctx, eventIDKey, strconv.FormatInt(id, 10)); err != nil {
		c.logger.Warn("Failed to cache event id", "error", err)
	}
}

// pickCanonical prefers an exact title match, then the highest id, which is
// read as the most recently created event.
func pickCanonical(events []domain.Event, title string) int64 {
	var highest int64
	for _, event := range events {
		if strings.EqualFold(event.Title, title) {
			return event.ID
		}
		if event.ID > highest {
			highest = event.ID
		}
	}
	return highest
}

func (d eventoDTO) toDomain() domain.Event {
	return domain.Event{
		ID:          d.ID,
		Title:       d.Titulo,
		Description: d.Descricao,
		Date:        parseApiTime(d.DataEvento),
		Local:       d.Local,
	}
}

// The backend serializes LocalDateTime without a zone.
const apiTimeLayout = "2006-01-02T15:04:05"

func parseApiTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t
	}
	if t, err := time.Parse(apiTimeLayout, value); err == nil {
		return t
	}
	return time.Time{}
}

func formatApiTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(apiTimeLayout)
}
