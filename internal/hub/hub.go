package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"point-canvas/internal/cursor"
	"point-canvas/internal/domain"
)

// 包级别的 WebSocket 常量，供 hub 和 client 使用
const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// 推送给客户端的事件类型
const (
	EventReadout  = "readout"  // 每次绘制后的同步读数
	EventRecorded = "recorded" // 记录服务确认过的点
	EventCursor   = "cursor"   // 由显示端执行的鼠标动作
)

// Event 是推送给显示端的消息
type Event struct {
	Type    string                `json:"type"`
	Readout *domain.Readout       `json:"readout,omitempty"`
	Point   *domain.RecordedPoint `json:"point,omitempty"`
	Cursor  *cursor.Action        `json:"cursor,omitempty"`
}

// HubMessage 定义了在 Hub 内部通道传递的消息类型
type HubMessage struct {
	Type    string  // "register", "unregister", "broadcast"
	Client  *Client // 仅用于 register/unregister
	RawData []byte  // 仅用于 broadcast
}

// Hub 维护订阅读数的客户端集合，并把事件广播给它们。
type Hub struct {
	messageChan chan HubMessage
	done        chan struct{}
	stopOnce    sync.Once

	clients   map[*Client]bool
	clientsMu sync.RWMutex

	// 可选的 Redis 订阅，nil 表示只推送本进程的读数
	redisClient *redis.Client
	channel     string
	subMu       sync.Mutex
	pubsub      *redis.PubSub
}

// NewHub 创建 Hub。redisClient 可以为 nil。
func NewHub(redisClient *redis.Client, channel string) *Hub {
	return &Hub{
		messageChan: make(chan HubMessage, 256),
		done:        make(chan struct{}),
		clients:     make(map[*Client]bool),
		redisClient: redisClient,
		channel:     channel,
	}
}

// Run 启动 Hub 的主事件处理循环，应在单独的 goroutine 中运行。
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")
	for {
		select {
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "broadcast":
				h.broadcast(msg.RawData)
			default:
				log.Warnf("Hub: Received unknown message type: %s", msg.Type)
			}
		case <-h.done:
			h.closeAllClients()
			log.Info("Hub is shutting down...")
			return
		}
	}
}

// Stop 停止 Run 循环并断开所有客户端
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to register a nil client")
		return
	}
	h.clientsMu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.clientsMu.Unlock()
	logrus.WithFields(logrus.Fields{"client": client.ID(), "clients": total}).Info("Client registered to Hub")
}

func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: Attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithField("client", client.ID())
	h.clientsMu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		// 关闭 send 通道，WritePump 会随之退出
		close(client.send)
		logCtx.Info("Client unregistered from Hub")
	} else {
		logCtx.Debug("Client already unregistered")
	}
	h.clientsMu.Unlock()
}

func (h *Hub) closeAllClients() {
	h.clientsMu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.clientsMu.Unlock()
}

// broadcast 把消息发给所有客户端，慢客户端的消息直接丢弃
func (h *Hub) broadcast(message []byte) {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- message:
		default:
			logrus.WithField("client", client.ID()).Warn("Client send channel full during broadcast, skipping this client")
		}
	}
}

// ClientCount 返回当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// QueueMessage 将消息放入 Hub 的处理队列 (非阻塞)。
// 返回 false 表示队列已满或 Hub 已停止。
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// PublishReadout 广播一次绘制后的读数，实现 service.ReadoutSink。
func (h *Hub) PublishReadout(r domain.Readout) {
	h.publishEvent(Event{Type: EventReadout, Readout: &r})
}

// Perform 把鼠标动作广播给显示端执行，实现 cursor.Actuator。
func (h *Hub) Perform(a cursor.Action) {
	h.publishEvent(Event{Type: EventCursor, Cursor: &a})
}

func (h *Hub) publishEvent(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logrus.WithError(err).Error("Hub: Failed to marshal event")
		return
	}
	h.QueueMessage(HubMessage{Type: "broadcast", RawData: data})
}

// SubscribeRecorded 订阅 Redis 中已记录点的频道，并把每个点作为 recorded 事件广播。
func (h *Hub) SubscribeRecorded(ctx context.Context) error {
	if h.redisClient == nil {
		return nil
	}
	log := logrus.WithFields(logrus.Fields{"component": "hub", "channel": h.channel})

	pubsub := h.redisClient.Subscribe(ctx, h.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return err
	}
	h.subMu.Lock()
	h.pubsub = pubsub
	h.subMu.Unlock()
	log.Info("Subscribed to recorded points")

	go func() {
		for msg := range pubsub.Channel() {
			var rp domain.RecordedPoint
			if err := json.Unmarshal([]byte(msg.Payload), &rp); err != nil {
				log.WithError(err).Warn("Failed to unmarshal recorded point")
				continue
			}
			readout := rp.Point.Readout()
			h.publishEvent(Event{Type: EventRecorded, Readout: &readout, Point: &rp})
		}
		log.Info("Recorded points subscription closed")
	}()
	return nil
}

// StopAllSubscriptions 关闭 Redis 订阅
func (h *Hub) StopAllSubscriptions() {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	if h.pubsub != nil {
		if err := h.pubsub.Close(); err != nil {
			logrus.WithError(err).Warn("Hub: Error closing subscription")
		}
		h.pubsub = nil
	}
}
