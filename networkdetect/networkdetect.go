package networkdetect

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/egaotan/solana-swap/dingsdk"
	"github.com/go-ping/ping"
	"go.uber.org/zap"
)

const (
	window       = 300
	highLatency  = 20 * time.Millisecond
	notifyPeriod = 5 * time.Minute
)

var ErrNoPeer = errors.New("no reachable rpc node")

// Host extracts the host name of an rpc endpoint such as
// http://10.0.0.1:8899.
func Host(peer string) (string, error) {
	u, err := url.Parse(peer)
	if err != nil {
		return "", err
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("no host in %q", peer)
	}
	return u.Hostname(), nil
}

// DetectPeers pings every peer count times and returns the one with the
// lowest average round trip.
func DetectPeers(peers []string, count int, logger *zap.Logger) (string, time.Duration, error) {
	if len(peers) == 0 {
		return "", 0, ErrNoPeer
	}
	if len(peers) == 1 {
		return peers[0], 0, nil
	}
	detect := func(peer string) (time.Duration, error) {
		address, err := Host(peer)
		if err != nil {
			return 0, err
		}
		pinger, err := ping.NewPinger(address)
		if err != nil {
			return 0, err
		}
		pinger.Count = count
		pinger.Timeout = time.Duration(count) * time.Second
		if err := pinger.Run(); err != nil {
			return 0, err
		}
		stats := pinger.Statistics()
		if stats.PacketsRecv == 0 {
			return 0, fmt.Errorf("no reply from %s", address)
		}
		return stats.AvgRtt, nil
	}
	best, minttl := "", time.Duration(0)
	for _, peer := range peers {
		ttl, err := detect(peer)
		if err != nil {
			logger.Warn("detect peer", zap.String("peer", peer), zap.Error(err))
			continue
		}
		logger.Info("detect peer", zap.String("peer", peer), zap.Duration("rtt", ttl))
		if best == "" || ttl < minttl {
			best, minttl = peer, ttl
		}
	}
	if best == "" {
		return "", 0, ErrNoPeer
	}
	return best, minttl, nil
}

// NetworkDetector keeps pinging one rpc node and reports through DingTalk
// when the node stays slow.
type NetworkDetector struct {
	peer       string
	mu         sync.Mutex
	ttl        []time.Duration
	avg        []time.Duration
	notifyTime time.Time
	pinger     *ping.Pinger
	log        *zap.Logger
	dsdk       *dingsdk.DingSdk
}

func NewNetworkDetector(peer string, dsdk *dingsdk.DingSdk, logger *zap.Logger) (*NetworkDetector, error) {
	address, err := Host(peer)
	if err != nil {
		return nil, err
	}
	nd := &NetworkDetector{
		peer:       address,
		ttl:        make([]time.Duration, 0),
		notifyTime: time.Now(),
		log:        logger.With(zap.String("component", "networkdetect")),
		dsdk:       dsdk,
	}
	return nd, nil
}

// record adds one round trip and reports the running average, and whether
// it has stayed above the threshold for the whole window.
func (nd *NetworkDetector) record(rtt time.Duration) (time.Duration, bool) {
	nd.mu.Lock()
	defer nd.mu.Unlock()
	nd.ttl = append(nd.ttl, rtt)
	if len(nd.ttl) > window {
		nd.ttl = nd.ttl[len(nd.ttl)-window:]
	}
	sum := time.Duration(0)
	for _, x := range nd.ttl {
		sum += x
	}
	avg := sum / time.Duration(len(nd.ttl))
	nd.avg = append(nd.avg, avg)
	if len(nd.avg) > window {
		nd.avg = nd.avg[len(nd.avg)-window:]
	}
	for _, x := range nd.avg {
		if x < highLatency {
			return avg, false
		}
	}
	return avg, true
}

func (nd *NetworkDetector) onRecv(pkt *ping.Packet) {
	avg, high := nd.record(pkt.Rtt)
	nd.log.Debug("ping", zap.Duration("avg", avg))
	if !high {
		return
	}
	nd.log.Warn("network latency is too large", zap.String("peer", nd.peer), zap.Duration("avg", avg))
	if nd.dsdk != nil && time.Since(nd.notifyTime) > notifyPeriod {
		nd.notifyTime = time.Now()
		go nd.notify(avg)
	}
}

func (nd *NetworkDetector) notify(avg time.Duration) {
	ttStr := time.Now().Format("2006-01-02 15:04:05")
	content := fmt.Sprintf("swap server network ttl: %d;\ntime: %s;", avg.Milliseconds(), ttStr)
	if _, err := nd.dsdk.Notify(context.Background(), dingsdk.NewTextNotify(content)); err != nil {
		nd.log.Warn("notify latency", zap.Error(err))
	}
}

func (nd *NetworkDetector) Start() error {
	pinger, err := ping.NewPinger(nd.peer)
	if err != nil {
		return err
	}
	pinger.OnRecv = nd.onRecv
	nd.pinger = pinger
	go func() {
		if err := pinger.Run(); err != nil {
			nd.log.Warn("ping", zap.Error(err))
		}
	}()
	return nil
}

func (nd *NetworkDetector) Stop() {
	if nd.pinger != nil {
		nd.pinger.Stop()
	}
}
