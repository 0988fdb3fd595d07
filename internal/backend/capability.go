// Package backend: CapabilityBackend layers two concrete, driver-backed
// syscalls on top of NativeBackend — a SQL store and a websocket dial —
// grounded on the teacher's internal/database.DatabaseModule (connection
// table keyed by id, driver blank-imports) and
// internal/network/websocket.go's WebSocketConn, generalized from
// security-scanning helpers into plain open/use/close capability
// handles. Neither is part of the array-primitive library (out of scope
// per spec.md §1); they exist only to give SysBackend.Syscall a real
// body to dispatch through, per SPEC_FULL.md §2. Two of the teacher's
// four blank-imported SQL drivers are kept (see DESIGN.md for why
// lib/pq and denisenkom/go-mssqldb are not) so SyscallOpenStore's driver
// argument actually selects between two real database/sql drivers
// rather than only ever opening "sqlite".
package backend

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/crypto/blake2b"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// CapabilityBackend extends NativeBackend with opt-in syscalls. It is
// never the default: a caller must construct it explicitly, matching
// the original's pattern of backends being chosen by the host rather
// than auto-detected.
type CapabilityBackend struct {
	*NativeBackend

	mu      sync.Mutex
	stores  map[string]*sql.DB
	sockets map[string]*websocket.Conn
	nextID  int
}

// NewCapabilityBackend returns a CapabilityBackend with empty store and
// socket tables.
func NewCapabilityBackend() *CapabilityBackend {
	return &CapabilityBackend{
		NativeBackend: NewNativeBackend(),
		stores:        make(map[string]*sql.DB),
		sockets:       make(map[string]*websocket.Conn),
	}
}

// Syscall dispatches the three capability ids this backend understands,
// falling back to NativeBackend's "not permitted" for anything else.
func (b *CapabilityBackend) Syscall(id SyscallID, args []any) (any, error) {
	switch id {
	case SyscallOpenStore:
		return b.openStore(args)
	case SyscallOpenSocket:
		return b.openSocket(args)
	case SyscallHash:
		return b.hash(args)
	default:
		return b.NativeBackend.Syscall(id, args)
	}
}

func (b *CapabilityBackend) openStore(args []any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("SyscallOpenStore expects 2 arguments: driver, dsn")
	}
	driver, _ := args[0].(string)
	dsn, _ := args[1].(string)
	if driver == "" {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("store-%d", b.nextID)
	b.stores[id] = db
	return id, nil
}

// CloseStore closes and forgets a store opened via SyscallOpenStore.
func (b *CapabilityBackend) CloseStore(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	db, ok := b.stores[id]
	if !ok {
		return fmt.Errorf("unknown store id %q", id)
	}
	delete(b.stores, id)
	return db.Close()
}

func (b *CapabilityBackend) openSocket(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("SyscallOpenSocket expects 1 argument: url")
	}
	url, _ := args[0].(string)
	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("websocket dial failed: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("socket-%d", b.nextID)
	b.sockets[id] = conn
	return id, nil
}

// CloseSocket closes and forgets a socket opened via SyscallOpenSocket.
func (b *CapabilityBackend) CloseSocket(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	conn, ok := b.sockets[id]
	if !ok {
		return fmt.Errorf("unknown socket id %q", id)
	}
	delete(b.sockets, id)
	return conn.Close()
}

func (b *CapabilityBackend) hash(args []any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("SyscallHash expects 1 argument: bytes")
	}
	data, _ := args[0].([]byte)
	sum := blake2b.Sum256(data)
	return sum[:], nil
}
