package cocina

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Mensaje is the event envelope pushed to every kitchen display client.
type Mensaje struct {
	Evento        string `json:"evento"`
	IDVenta       string `json:"id_venta,omitempty"`
	Estado        string `json:"estado,omitempty"`
	MesaNumero    *int   `json:"mesa_numero,omitempty"`
	IDSucursal    string `json:"id_sucursal"`
	IDRestaurante string `json:"id_restaurante"`
}

type cliente struct {
	conn          *websocket.Conn
	send          chan Mensaje
	idRestaurante string
	idSucursal    string
}

// Hub keeps the set of connected kitchen displays and fans events out to
// them. Clients only receive events for their own restaurante/sucursal.
type Hub struct {
	mu       sync.RWMutex
	clientes map[*cliente]struct{}
}

func NewHub() *Hub {
	return &Hub{clientes: make(map[*cliente]struct{})}
}

// Register attaches a websocket connection to the hub and starts its
// writer/reader pumps. It returns immediately; the pumps own the conn.
func (h *Hub) Register(conn *websocket.Conn, idRestaurante, idSucursal string) {
	c := &cliente{
		conn:          conn,
		send:          make(chan Mensaje, 16),
		idRestaurante: idRestaurante,
		idSucursal:    idSucursal,
	}
	h.mu.Lock()
	h.clientes[c] = struct{}{}
	total := len(h.clientes)
	h.mu.Unlock()
	log.Info().Str("id_sucursal", idSucursal).Int("conectados", total).Msg("pantalla de cocina conectada")

	go c.writePump(h)
	go c.readPump(h)
}

func (h *Hub) unregister(c *cliente) {
	h.mu.Lock()
	if _, ok := h.clientes[c]; ok {
		delete(h.clientes, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}

// Broadcast delivers the message to every client of the same tenant.
// Slow clients get dropped rather than blocking the hub.
func (h *Hub) Broadcast(m Mensaje) {
	h.mu.RLock()
	var lentos []*cliente
	for c := range h.clientes {
		if c.idRestaurante != m.IDRestaurante {
			continue
		}
		if c.idSucursal != "" && m.IDSucursal != "" && c.idSucursal != m.IDSucursal {
			continue
		}
		select {
		case c.send <- m:
		default:
			lentos = append(lentos, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range lentos {
		log.Warn().Str("id_sucursal", c.idSucursal).Msg("cliente de cocina lento, desconectando")
		h.unregister(c)
	}
}

func (c *cliente) writePump(h *Hub) {
	for m := range c.send {
		if err := c.conn.WriteJSON(m); err != nil {
			h.unregister(c)
			return
		}
	}
}

func (c *cliente) readPump(h *Hub) {
	defer h.unregister(c)
	for {
		// Kitchen displays are receive-only; reads just detect disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
