// Package flipsidetest provides an in-process fake of the query service.
package flipsidetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Call is one recorded JSON-RPC request.
type Call struct {
	Method string
	APIKey string
	Params []json.RawMessage
}

// Reply is what a handler returns for a call. Error, when set, is sent as
// the JSON-RPC error object instead of Result.
type Reply struct {
	Result interface{}
	Error  *ErrorObject
	// Status overrides the HTTP status code.
	Status int
}

// ErrorObject is a JSON-RPC error.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// HandlerFunc answers a single call.
type HandlerFunc func(call Call) Reply

// Server is a fake query service backed by httptest.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
}

type request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// NewServer starts a fake service. Unknown methods get a -32601 error.
func NewServer() *Server {
	s := &Server{handlers: make(map[string]HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Handle registers a handler for a method.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	s.handlers[method] = fn
	s.mu.Unlock()
}

// Calls returns the calls received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallsTo returns the calls received for one method.
func (s *Server) CallsTo(method string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	call := Call{Method: req.Method, APIKey: r.Header.Get("x-api-key"), Params: req.Params}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	fn, ok := s.handlers[req.Method]
	s.mu.Unlock()

	reply := Reply{Error: &ErrorObject{Code: -32601, Message: "method not found"}}
	if ok {
		reply = fn(call)
	}
	if reply.Status != 0 && reply.Status != http.StatusOK {
		http.Error(w, http.StatusText(reply.Status), reply.Status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  reply.Result,
		Error:   reply.Error,
	})
}

// QueryRun builds a {"queryRun": {...}} result.
func QueryRun(id, state string) map[string]interface{} {
	return map[string]interface{}{
		"queryRun": map[string]interface{}{"id": id, "state": state},
	}
}

// Rows builds a getQueryRunResults result with the given rows.
func Rows(rows ...map[string]interface{}) map[string]interface{} {
	if rows == nil {
		rows = []map[string]interface{}{}
	}
	return map[string]interface{}{
		"columnNames": []string{"swap_volume", "n_swaps", "affiliate_fee_paid"},
		"rows":        rows,
		"page": map[string]interface{}{
			"currentPageNumber": 1,
			"currentPageSize":   len(rows),
			"totalRows":         len(rows),
			"totalPages":        1,
		},
	}
}

// StateSequence answers getQueryRun with the given states in order,
// repeating the last one once exhausted.
func StateSequence(id string, states ...string) HandlerFunc {
	var mu sync.Mutex
	i := 0
	return func(Call) Reply {
		mu.Lock()
		defer mu.Unlock()
		state := states[len(states)-1]
		if i < len(states) {
			state = states[i]
		}
		i++
		return Reply{Result: QueryRun(id, state)}
	}
}
