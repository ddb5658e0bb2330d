package models

// NetworkState describes observed connectivity. Transient, never persisted.
type NetworkState struct {
	Status string `json:"status"` // available, unavailable, error
	Reason string `json:"reason,omitempty"`
}

const (
	NetworkAvailable   = "available"
	NetworkUnavailable = "unavailable"
	NetworkError       = "error"
)

func NetworkStateAvailable() NetworkState   { return NetworkState{Status: NetworkAvailable} }
func NetworkStateUnavailable() NetworkState { return NetworkState{Status: NetworkUnavailable} }
func NetworkStateError(reason string) NetworkState {
	return NetworkState{Status: NetworkError, Reason: reason}
}

// Online reports whether the state allows remote calls.
func (s NetworkState) Online() bool { return s.Status == NetworkAvailable }

// SyncState is the publish-only status of the sync subsystem. Consumers must
// not assume monotonic transitions: Syncing can be followed by Error or
// Success, and Idle can recur.
type SyncState struct {
	Status  string `json:"status"` // idle, offline, syncing, success, error
	Message string `json:"message,omitempty"`
}

const (
	SyncIdle    = "idle"
	SyncOffline = "offline"
	SyncSyncing = "syncing"
	SyncSuccess = "success"
	SyncError   = "error"
)

func SyncStateIdle() SyncState    { return SyncState{Status: SyncIdle} }
func SyncStateOffline() SyncState { return SyncState{Status: SyncOffline} }
func SyncStateSyncing(msg string) SyncState {
	return SyncState{Status: SyncSyncing, Message: msg}
}
func SyncStateSuccess(msg string) SyncState {
	return SyncState{Status: SyncSuccess, Message: msg}
}
func SyncStateError(msg string) SyncState {
	return SyncState{Status: SyncError, Message: msg}
}

// DataState is the merged read result served to presentation code. Stale
// data is always carried alongside the status so the UI never renders empty
// on a degraded path.
type DataState[T any] struct {
	Status  string `json:"status"` // success, loading, offline, error
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

const (
	DataSuccess = "success"
	DataLoading = "loading"
	DataOffline = "offline"
	DataError   = "error"
)

func DataStateSuccess[T any](data T) DataState[T] {
	return DataState[T]{Status: DataSuccess, Data: data}
}

func DataStateLoading[T any](data T, msg string) DataState[T] {
	return DataState[T]{Status: DataLoading, Data: data, Message: msg}
}

func DataStateOffline[T any](data T, msg string) DataState[T] {
	return DataState[T]{Status: DataOffline, Data: data, Message: msg}
}

func DataStateError[T any](msg string, data T) DataState[T] {
	return DataState[T]{Status: DataError, Data: data, Message: msg}
}
