// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package actor

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/tochemey/netactor/address"
	"github.com/tochemey/netactor/backpressure"
	gerrors "github.com/tochemey/netactor/errors"
	"github.com/tochemey/netactor/internal/eventstream"
	"github.com/tochemey/netactor/internal/netchannel"
	"github.com/tochemey/netactor/internal/validation"
	"github.com/tochemey/netactor/internal/wire"
	"github.com/tochemey/netactor/internal/workerpool"
	"github.com/tochemey/netactor/internal/xsync"
	"github.com/tochemey/netactor/log"
	"github.com/tochemey/netactor/remote"
)

const (
	defaultThroughput      = 64
	defaultMailboxCapacity = 4096
	defaultMailboxTimeout  = time.Second
	defaultShutdownTimeout = 30 * time.Second
)

var errNilMessage = errors.New("message is required")

// Connection describes the link to one peer
type Connection = netchannel.Connection

// Environment hosts the actors of one node and routes messages to them,
// whether they live here or on a peer. Create one with New, then Start it;
// Shutdown stops every actor and closes every connection.
type Environment struct {
	logger          log.Logger
	workerCount     int
	throughput      int
	mailboxCapacity int
	mailboxPolicy   backpressure.Policy
	remoteConfig    *remote.Config
	peerSet         mapset.Set[address.Node]
	kinds           map[string]func() Behavior
	meterProvider   metric.MeterProvider
	shutdownTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	node   address.Node
	peers  []address.Node

	registry *xsync.ShardedMap[*cell]
	nextID   *atomic.Uint64
	// retired holds the ids of terminated actors; they are never issued again
	idsMu     sync.Mutex
	retired   mapset.Set[address.ActorID]
	queries   *xsync.Map[uint64, *query]
	queryID   *atomic.Uint64
	workers   *workerpool.WorkerPool
	manager   *netchannel.Manager
	scheduler *scheduler
	events    *eventstream.EventsStream
	metrics   metric.Registration

	started    *atomic.Bool
	stopping   *atomic.Bool
	expiring   *atomic.Bool
	expired    chan struct{}
	expireOnce sync.Once
	roundRobin *atomic.Uint64

	processed   *atomic.Uint64
	failures    *atomic.Uint64
	deadletters *atomic.Uint64
}

var _ validation.Validator = (*Environment)(nil)

// New creates an Environment
func New(opts ...Option) (*Environment, error) {
	env := &Environment{
		logger:          log.DefaultLogger,
		workerCount:     runtime.GOMAXPROCS(0),
		throughput:      defaultThroughput,
		mailboxCapacity: defaultMailboxCapacity,
		mailboxPolicy:   backpressure.NewBlockWithTimeout(defaultMailboxTimeout),
		peerSet:         mapset.NewSet[address.Node](),
		kinds:           make(map[string]func() Behavior),
		shutdownTimeout: defaultShutdownTimeout,
		registry:        xsync.NewShardedMap[*cell](0),
		nextID:          atomic.NewUint64(0),
		retired:         mapset.NewThreadUnsafeSet[address.ActorID](),
		queries:         xsync.NewMap[uint64, *query](),
		queryID:         atomic.NewUint64(0),
		started:         atomic.NewBool(false),
		stopping:        atomic.NewBool(false),
		expiring:        atomic.NewBool(false),
		expired:         make(chan struct{}),
		roundRobin:      atomic.NewUint64(0),
		processed:       atomic.NewUint64(0),
		failures:        atomic.NewUint64(0),
		deadletters:     atomic.NewUint64(0),
	}

	for _, opt := range opts {
		opt.Apply(env)
	}

	if err := env.Validate(); err != nil {
		return nil, err
	}

	env.peers = env.peerSet.ToSlice()
	slices.SortFunc(env.peers, func(a, b address.Node) int {
		return strings.Compare(a.String(), b.String())
	})
	return env, nil
}

// Validate checks the Environment settings
func (env *Environment) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddAssertion(env.logger != nil, "logger is required").
		AddAssertion(env.workerCount > 0, "workers must be greater than 0").
		AddAssertion(env.throughput > 0, "throughput must be greater than 0").
		AddAssertion(env.mailboxCapacity > 0, "mailbox capacity must be greater than 0").
		AddValidator(validation.NewPositiveDurationValidator("shutdownTimeout", env.shutdownTimeout))

	for name, factory := range env.kinds {
		chain = chain.
			AddValidator(validation.NewEmptyStringValidator("kind", name)).
			AddAssertion(factory != nil, fmt.Sprintf("kind %q has no factory", name))
	}

	for _, peer := range env.peerSet.ToSlice() {
		chain = chain.AddValidator(peer)
	}

	if env.remoteConfig != nil {
		chain = chain.AddValidator(env.remoteConfig)
	} else {
		chain = chain.AddAssertion(env.peerSet.Cardinality() == 0, "static peers require remoting")
	}
	return chain.Validate()
}

// Start brings the Environment up: worker pool, scheduler and, when
// remoting is enabled, the listener.
func (env *Environment) Start(ctx context.Context) error {
	if !env.started.CompareAndSwap(false, true) {
		return nil
	}

	env.ctx, env.cancel = context.WithCancel(context.WithoutCancel(ctx))
	env.events = eventstream.New()
	env.workers = workerpool.New(
		workerpool.WithWorkers(env.workerCount),
		workerpool.WithLogger(env.logger))
	env.workers.Start()

	env.scheduler = newScheduler(env.logger, env.shutdownTimeout, env.send)
	env.scheduler.Start(env.ctx)

	if env.remoteConfig != nil {
		env.manager = netchannel.NewManager(env.remoteConfig, &remoting{env: env}, netchannel.WithLogger(env.logger))
		if err := env.manager.Start(ctx); err != nil {
			env.scheduler.Stop(ctx)
			env.workers.Stop()
			env.cancel()
			env.started.Store(false)
			return fmt.Errorf("failed to start remoting: %w", err)
		}
		env.node = env.manager.Node()
	}

	if err := env.registerMetrics(); err != nil {
		env.logger.Warnf("failed to register metrics: %v", err)
	}

	env.logger.Infof("environment started (node=%s, peers=%d)", env.node, len(env.peers))
	return nil
}

// Shutdown stops every local actor, then says goodbye to every peer and
// closes the connections. Actors that do not stop within the shutdown
// timeout are abandoned.
func (env *Environment) Shutdown(ctx context.Context) error {
	if !env.started.Load() {
		return gerrors.ErrEnvironmentNotStarted
	}
	if !env.stopping.CompareAndSwap(false, true) {
		return nil
	}

	env.logger.Infof("environment shutting down (node=%s)", env.node)
	env.scheduler.Stop(ctx)

	var err error
	cells := env.registry.Snapshot()
	for _, c := range cells {
		c.requestStop()
	}

	tctx, cancel := context.WithTimeout(ctx, env.shutdownTimeout)
	defer cancel()
	for _, c := range cells {
		select {
		case <-c.done:
		case <-tctx.Done():
			err = multierr.Append(err, fmt.Errorf("actor %s did not stop in time: %w", c.id, tctx.Err()))
		}
	}

	if env.manager != nil {
		err = multierr.Append(err, env.manager.Stop(ctx))
	}

	env.cancel()
	env.workers.Stop()
	if env.metrics != nil {
		err = multierr.Append(err, env.metrics.Unregister())
	}
	env.events.Close()
	env.logger.Infof("environment stopped (node=%s)", env.node)
	return err
}

// Node returns the address peers reach this Environment at. It is the zero
// Node when remoting is disabled.
func (env *Environment) Node() address.Node {
	return env.node
}

// Peers returns the static peer list
func (env *Environment) Peers() []address.Node {
	return slices.Clone(env.peers)
}

// Spawn starts a local actor running behavior and returns its reference
// immediately; OnStart may not have run yet.
func (env *Environment) Spawn(_ context.Context, behavior Behavior, opts ...SpawnOption) (address.ActorRef, error) {
	if err := env.canSpawn(); err != nil {
		return address.NoSender(), err
	}
	if behavior == nil {
		return address.NoSender(), errors.New("behavior is required")
	}
	return env.spawnLocal("", behavior, newSpawnConfig(opts...))
}

// SpawnKind starts an actor of a registered kind. Placement goes round-robin
// over this node and the static peers.
func (env *Environment) SpawnKind(ctx context.Context, kind string, opts ...SpawnOption) (address.ActorRef, error) {
	if _, ok := env.kinds[kind]; !ok {
		return address.NoSender(), fmt.Errorf("%w: %s", gerrors.ErrKindNotRegistered, kind)
	}

	targets := len(env.peers) + 1
	slot := int((env.roundRobin.Inc() - 1) % uint64(targets))
	if slot == 0 {
		return env.SpawnKindOn(ctx, env.node, kind, opts...)
	}
	return env.SpawnKindOn(ctx, env.peers[slot-1], kind, opts...)
}

// SpawnKindOn starts an actor of a registered kind on node. A remote spawn
// is fire-and-forget: the reference is returned once the request is queued,
// and messages sent to it afterwards are processed after the spawn.
//
// A remote spawn that fails on node, because the kind is unknown there or
// the id is taken, is only reported on node as an ActorFailed event. With
// WithActorID the returned reference then addresses whatever actor already
// holds that id on node, if any. Use Find beforehand when that matters.
func (env *Environment) SpawnKindOn(ctx context.Context, node address.Node, kind string, opts ...SpawnOption) (address.ActorRef, error) {
	if err := env.canSpawn(); err != nil {
		return address.NoSender(), err
	}

	config := newSpawnConfig(opts...)
	if env.isLocal(node) {
		factory, ok := env.kinds[kind]
		if !ok {
			return address.NoSender(), fmt.Errorf("%w: %s", gerrors.ErrKindNotRegistered, kind)
		}
		return env.spawnLocal(kind, factory(), config)
	}

	if env.manager == nil {
		return address.NoSender(), gerrors.ErrRemotingDisabled
	}

	id := config.id
	if id == "" {
		id = address.ActorID(uuid.NewString())
	} else if err := address.ValidateName(id); err != nil {
		return address.NoSender(), err
	}

	frame := &wire.Frame{
		Kind:        wire.KindSpawn,
		SourceNode:  env.node.String(),
		Destination: string(id),
		KindName:    kind,
	}
	if err := env.manager.Send(ctx, node, frame); err != nil {
		return address.NoSender(), err
	}
	return address.Remote(node, id), nil
}

// Stop asks the actor at ref to stop. The actor finishes the message in
// flight, runs OnStop and is removed; pending messages are dropped. Stop does
// not wait for any of this.
func (env *Environment) Stop(ctx context.Context, ref address.ActorRef) error {
	if !env.started.Load() {
		return gerrors.ErrEnvironmentNotStarted
	}
	if err := ref.Validate(); err != nil {
		return err
	}

	if env.isLocalRef(ref) {
		c, ok := env.registry.Get(string(ref.ID()))
		if !ok {
			return gerrors.ErrActorNotFound
		}
		c.requestStop()
		return nil
	}

	if env.manager == nil {
		return gerrors.ErrRemotingDisabled
	}
	return env.manager.Send(ctx, ref.Node(), &wire.Frame{
		Kind:        wire.KindStop,
		SourceNode:  env.node.String(),
		Destination: string(ref.ID()),
	})
}

// Lookup returns the reference of a local actor. Find also asks the peers.
func (env *Environment) Lookup(id address.ActorID) (address.ActorRef, bool) {
	if _, ok := env.registry.Get(string(id)); !ok {
		return address.NoSender(), false
	}
	return address.Local(id), true
}

// Send delivers msg to the actor at to without a sender. A local target
// gets the message in its mailbox; a remote one gets it through the
// connection to its node. Under backpressure Send waits at most the
// configured timeout, or fails immediately with ErrMailboxFull.
func (env *Environment) Send(ctx context.Context, to address.ActorRef, msg any) error {
	return env.send(ctx, address.NoSender(), to, msg)
}

// Broadcast delivers msg to every local actor and to every actor of every
// known peer.
func (env *Environment) Broadcast(ctx context.Context, msg any) error {
	if err := env.canSend(msg); err != nil {
		return err
	}

	var err error
	for _, c := range env.registry.Snapshot() {
		envelope := &Envelope{Sender: address.NoSender(), Receiver: c.id, Message: msg}
		if e := c.tell(ctx, envelope); e != nil {
			env.deadLetter(envelope.Sender, address.Local(c.id), msg, e)
		}
	}

	if env.manager == nil {
		return nil
	}

	tag, payload, e := env.remoteConfig.Encode(msg)
	if e != nil {
		return e
	}

	for _, peer := range env.knownPeers() {
		frame := &wire.Frame{
			Kind:       wire.KindBroadcast,
			SourceNode: env.node.String(),
			TypeTag:    tag,
			Payload:    payload,
		}
		if e := env.manager.Send(ctx, peer, frame); e != nil {
			err = multierr.Append(err, fmt.Errorf("broadcast to %s: %w", peer, e))
		}
	}
	return err
}

// ListActive returns a point-in-time copy of the registry, sorted by id
func (env *Environment) ListActive() []ActorInfo {
	cells := env.registry.Snapshot()
	infos := make([]ActorInfo, 0, len(cells))
	for _, c := range cells {
		infos = append(infos, c.info())
	}
	slices.SortFunc(infos, func(a, b ActorInfo) int {
		return compareIDs(a.ID, b.ID)
	})
	return infos
}

// Connections returns the state of the connection to every known peer
func (env *Environment) Connections() []Connection {
	if env.manager == nil {
		return nil
	}
	return env.manager.Connections()
}

// Subscribe returns a subscriber receiving the Environment events
func (env *Environment) Subscribe() (eventstream.Subscriber, error) {
	if !env.started.Load() {
		return nil, gerrors.ErrEnvironmentNotStarted
	}
	sub := env.events.AddSubscriber()
	env.events.Subscribe(sub, eventsTopic)
	return sub, nil
}

// Unsubscribe removes a subscriber returned by Subscribe
func (env *Environment) Unsubscribe(sub eventstream.Subscriber) error {
	if !env.started.Load() {
		return gerrors.ErrEnvironmentNotStarted
	}
	env.events.Unsubscribe(sub, eventsTopic)
	env.events.RemoveSubscriber(sub)
	return nil
}

func (env *Environment) send(ctx context.Context, from, to address.ActorRef, msg any) error {
	if err := env.canSend(msg); err != nil {
		return err
	}
	if err := to.Validate(); err != nil {
		return err
	}

	if env.isLocalRef(to) {
		return env.tellLocal(ctx, &Envelope{Sender: from, Receiver: to.ID(), Message: msg})
	}

	if env.manager == nil {
		return gerrors.ErrRemotingDisabled
	}

	tag, payload, err := env.remoteConfig.Encode(msg)
	if err != nil {
		return err
	}

	frame := &wire.Frame{
		Kind:        wire.KindData,
		Destination: string(to.ID()),
		TypeTag:     tag,
		Payload:     payload,
	}
	switch {
	case from.IsRemote():
		frame.SourceNode = from.Node().String()
		frame.SourceID = string(from.ID())
	case from.IsLocal():
		frame.SourceNode = env.node.String()
		frame.SourceID = string(from.ID())
	}
	return env.manager.Send(ctx, to.Node(), frame)
}

func (env *Environment) tellLocal(ctx context.Context, envelope *Envelope) error {
	c, ok := env.registry.Get(string(envelope.Receiver))
	if !ok {
		env.deadLetter(envelope.Sender, address.Local(envelope.Receiver), envelope.Message, gerrors.ErrActorNotFound)
		return gerrors.ErrActorNotFound
	}
	return c.tell(ctx, envelope)
}

func (env *Environment) spawnLocal(kind string, behavior Behavior, config *spawnConfig) (address.ActorRef, error) {
	id := config.id
	if id == "" {
		id = address.ActorID(strconv.FormatUint(env.nextID.Inc(), 10))
	} else if err := address.ValidateName(id); err != nil {
		return address.NoSender(), err
	}
	return env.register(id, kind, behavior, config)
}

func (env *Environment) register(id address.ActorID, kind string, behavior Behavior, config *spawnConfig) (address.ActorRef, error) {
	capacity, policy := env.mailboxCapacity, env.mailboxPolicy
	if config.mailboxCapacity > 0 {
		capacity = config.mailboxCapacity
	}
	if config.mailboxPolicy != nil {
		policy = *config.mailboxPolicy
	}

	c := newCell(env, id, kind, behavior, newMailbox(capacity, policy))
	env.idsMu.Lock()
	if env.retired.Contains(id) || !env.registry.SetIfAbsent(string(id), c) {
		env.idsMu.Unlock()
		return address.NoSender(), fmt.Errorf("%w: %s", gerrors.ErrActorAlreadyExists, id)
	}
	env.idsMu.Unlock()

	c.schedule()
	return address.Local(id), nil
}

func (env *Environment) deregister(c *cell) {
	env.idsMu.Lock()
	env.retired.Add(c.id)
	env.registry.Delete(string(c.id))
	env.idsMu.Unlock()
}

func (env *Environment) canSpawn() error {
	switch {
	case !env.started.Load():
		return gerrors.ErrEnvironmentNotStarted
	case env.stopping.Load(), env.expiring.Load():
		return gerrors.ErrEnvironmentStopped
	}
	return nil
}

func (env *Environment) canSend(msg any) error {
	switch {
	case !env.started.Load():
		return gerrors.ErrEnvironmentNotStarted
	case env.stopping.Load():
		return gerrors.ErrEnvironmentStopped
	case msg == nil:
		return errNilMessage
	}
	return nil
}

func (env *Environment) isLocal(node address.Node) bool {
	return node.IsZero() || node.Equals(env.node)
}

func (env *Environment) isLocalRef(ref address.ActorRef) bool {
	return ref.IsLocal() || (ref.IsRemote() && ref.Node().Equals(env.node))
}

// knownPeers returns the static peers plus every peer with a connection
func (env *Environment) knownPeers() []address.Node {
	known := mapset.NewThreadUnsafeSet(env.peers...)
	for _, conn := range env.Connections() {
		known.Add(conn.Node)
	}
	known.Remove(env.node)

	out := known.ToSlice()
	slices.SortFunc(out, func(a, b address.Node) int {
		return strings.Compare(a.String(), b.String())
	})
	return out
}

func (env *Environment) publish(event any) {
	if env.events != nil {
		env.events.Publish(eventsTopic, event)
	}
}

func (env *Environment) deadLetter(sender, receiver address.ActorRef, msg any, reason error) {
	env.deadletters.Inc()
	env.logger.Debugf("dead letter to %s: %v", receiver, reason)
	env.publish(&DeadLetter{Sender: sender, Receiver: receiver, Message: msg, Reason: reason})
}

// compareIDs orders issued decimal ids numerically, before any other id
func compareIDs(a, b address.ActorID) int {
	na, errA := strconv.ParseUint(string(a), 10, 64)
	nb, errB := strconv.ParseUint(string(b), 10, 64)
	switch {
	case errA == nil && errB == nil:
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(string(a), string(b))
}
