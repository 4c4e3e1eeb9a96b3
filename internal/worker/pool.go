package worker

import (
	"context"
	"encoding/json"
	"time"

	"mentapos/internal/cocina"
	"mentapos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueCocina = "jobs:cocina"
	QueueEmail  = "jobs:email"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// EventoCocina fans an order/table state change out to the kitchen display
// hub. Enqueued after the owning transaction commits, never inside it.
type EventoCocina struct {
	Evento        string `json:"evento"` // pedido_creado | estado_actualizado | mesa_actualizada
	IDVenta       string `json:"id_venta,omitempty"`
	Estado        string `json:"estado,omitempty"`
	MesaNumero    *int   `json:"mesa_numero,omitempty"`
	IDSucursal    string `json:"id_sucursal"`
	IDRestaurante string `json:"id_restaurante"`
}

// EmailRecibo mails the closing receipt PDF to the customer.
type EmailRecibo struct {
	Destinatario string `json:"destinatario"`
	Asunto       string `json:"asunto"`
	Cuerpo       string `json:"cuerpo"`
	PDFPath      string `json:"pdf_path,omitempty"`
}

// Dispatcher enqueues async jobs into Redis lists. The worker pool dequeues
// them via BRPOP. Enqueueing is best-effort: callers fire and forget after
// their transaction has committed.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher { return &Dispatcher{rdb: rdb} }

func (d *Dispatcher) EnqueueEventoCocina(ctx context.Context, ev EventoCocina) error {
	return d.enqueue(ctx, QueueCocina, "cocina", ev)
}

func (d *Dispatcher) EnqueueEmailRecibo(ctx context.Context, job EmailRecibo) error {
	return d.enqueue(ctx, QueueEmail, "email", job)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Handlers holds the collaborators the pool needs to process each job type.
type Handlers struct {
	Hub    *cocina.Hub
	Mailer *infra.Mailer
}

// StartPool launches numWorkers goroutines consuming both queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartPool(ctx context.Context, rdb *redis.Client, h *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, h, i)
	}
	log.Info().Msgf("worker pool iniciado con %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, h *Handlers, id int) {
	queues := []string{QueueCocina, QueueEmail}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d detenido", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(result[0], result[1], h)
		}
	}
}

func processJob(queue, raw string, h *Handlers) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("job ilegible")
		return
	}

	switch job.Type {
	case "cocina":
		var ev EventoCocina
		if err := json.Unmarshal(job.Payload, &ev); err != nil {
			log.Error().Err(err).Msg("payload de evento cocina ilegible")
			return
		}
		if h.Hub != nil {
			h.Hub.Broadcast(cocina.Mensaje{
				Evento:        ev.Evento,
				IDVenta:       ev.IDVenta,
				Estado:        ev.Estado,
				MesaNumero:    ev.MesaNumero,
				IDSucursal:    ev.IDSucursal,
				IDRestaurante: ev.IDRestaurante,
			})
		}
	case "email":
		var job2 EmailRecibo
		if err := json.Unmarshal(job.Payload, &job2); err != nil {
			log.Error().Err(err).Msg("payload de email ilegible")
			return
		}
		if h.Mailer == nil {
			return
		}
		if err := h.Mailer.EnviarRecibo(job2.Destinatario, job2.Asunto, job2.Cuerpo, job2.PDFPath); err != nil {
			log.Error().Err(err).Str("destinatario", job2.Destinatario).Msg("envio de recibo fallido")
		}
	default:
		log.Warn().Str("type", job.Type).Msg("tipo de job desconocido")
	}
}
