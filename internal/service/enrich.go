package service

import (
	"context"
	"log/slog"

	"github.com/pribylovaa/go-maps-harvester/internal/models"
	"github.com/pribylovaa/go-maps-harvester/internal/pkg/log"
	"github.com/pribylovaa/go-maps-harvester/internal/queue/rabbitmq"
)

// enrich передаёт карточки с сайтом в очередь обогащения.
//
// Соцсети пропускаются. Если подключён SeenCache, повторно не публикуются
// карточки, отправленные в пределах TTL кэша; при сбое кэша публикуется всё.
// Ошибки только логируются: результат харвеста уже сохранён.
func (s *Service) enrich(ctx context.Context, run models.Run, listings []models.Listing) {
	const op = "service.enrich"

	if s.publisher == nil {
		return
	}

	lg := log.From(ctx)

	tasks := enrichTasks(run, listings)
	if len(tasks) == 0 {
		return
	}

	if s.seen != nil {
		ids := make([]string, len(tasks))
		for i, t := range tasks {
			ids[i] = t.ListingID
		}

		fresh, err := s.seen.MarkSeen(ctx, ids)
		if err != nil {
			lg.Warn("enrich_seen_cache_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		} else {
			tasks = filterTasks(tasks, fresh)
		}
	}

	if len(tasks) == 0 {
		lg.Info("enrich_nothing_new", slog.String("op", op))
		return
	}

	n, err := s.publisher.PublishEnrichTasks(ctx, tasks)
	if err != nil {
		lg.Warn("enrich_publish_failed",
			slog.String("op", op),
			slog.Int("published", n),
			slog.Int("total", len(tasks)),
			slog.String("err", err.Error()),
		)
		return
	}

	lg.Info("enrich_published",
		slog.String("op", op),
		slog.Int("published", n),
	)
}

func enrichTasks(run models.Run, listings []models.Listing) []rabbitmq.EnrichTask {
	tasks := make([]rabbitmq.EnrichTask, 0, len(listings))

	for _, it := range listings {
		domain := websiteDomain(it.Website)
		if domain == "" || isSocialDomain(domain) {
			continue
		}

		tasks = append(tasks, rabbitmq.EnrichTask{
			RunID:     run.ID.String(),
			ListingID: it.ID,
			Name:      it.Name,
			Website:   it.Website,
			Domain:    domain,
			Query:     run.Query,
		})
	}

	return tasks
}

func filterTasks(tasks []rabbitmq.EnrichTask, fresh []string) []rabbitmq.EnrichTask {
	keep := make(map[string]struct{}, len(fresh))
	for _, id := range fresh {
		keep[id] = struct{}{}
	}

	out := tasks[:0]
	for _, t := range tasks {
		if _, ok := keep[t.ListingID]; ok {
			out = append(out, t)
		}
	}

	return out
}
