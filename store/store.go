package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

type Store struct {
	ctx           context.Context
	log           *logrus.Logger
	candidateChan chan *Candidate
	bundleChan    chan *SubmittedBundle
	dao           *Dao
	wg            sync.WaitGroup
}

func NewStore(ctx context.Context, log *logrus.Logger, dialect, dsn string) (*Store, error) {
	dao, err := NewDao(dialect, dsn)
	if err != nil {
		return nil, err
	}
	s := &Store{
		ctx:           ctx,
		log:           log,
		candidateChan: make(chan *Candidate, 1024),
		bundleChan:    make(chan *SubmittedBundle, 256),
		dao:           dao,
	}
	return s, nil
}

func (s *Store) Start() {
	s.wg.Add(1)
	go s.store()
}

// Stop waits for the writer to flush what is already queued.
func (s *Store) Stop() {
	s.wg.Wait()
}

func (s *Store) store() {
	defer s.wg.Done()
	for {
		select {
		case candidate := <-s.candidateChan:
			s.saveCandidate(candidate)
		case bundle := <-s.bundleChan:
			s.saveBundle(bundle)
		case <-s.ctx.Done():
			s.drain()
			return
		}
	}
}

func (s *Store) drain() {
	for {
		select {
		case candidate := <-s.candidateChan:
			s.saveCandidate(candidate)
		case bundle := <-s.bundleChan:
			s.saveBundle(bundle)
		default:
			return
		}
	}
}

func (s *Store) saveCandidate(candidate *Candidate) {
	if err := s.dao.SaveCandidate(candidate); err != nil {
		s.log.Printf("save candidate(%s) err: %s", candidate.Id, err.Error())
	}
}

func (s *Store) saveBundle(bundle *SubmittedBundle) {
	if err := s.dao.SaveSubmittedBundle(bundle); err != nil {
		s.log.Printf("save bundle(%s) err: %s", bundle.CandidateId, err.Error())
	}
}

// StoreCandidate never blocks the pipeline; records are dropped when the writer lags.
func (s *Store) StoreCandidate(candidate *Candidate) {
	select {
	case s.candidateChan <- candidate:
	default:
		s.log.Printf("store queue full, candidate(%s) dropped", candidate.Id)
	}
}

func (s *Store) StoreSubmittedBundle(bundle *SubmittedBundle) {
	select {
	case s.bundleChan <- bundle:
	default:
		s.log.Printf("store queue full, bundle(%s) dropped", bundle.CandidateId)
	}
}

func (s *Store) GetCandidate(id string) ([]*Candidate, error) {
	return s.dao.SelectCandidate(id)
}

func (s *Store) GetSubmittedBundle(candidateId string) ([]*SubmittedBundle, error) {
	return s.dao.SelectSubmittedBundle(candidateId)
}

func (s *Store) Stats() (map[string]int64, error) {
	return s.dao.CountByStage()
}
