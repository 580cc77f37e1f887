package badger

// NewMemoryRepository creates an in-memory backend and repository for tests.
// The returned backend must be closed after the repository.
func NewMemoryRepository() (*Backend, *AudioRepository, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, err
	}
	repo, err := NewAudioRepository(backend)
	if err != nil {
		backend.Close()
		return nil, nil, err
	}
	return backend, repo, nil
}
