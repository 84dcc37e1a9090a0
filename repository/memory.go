package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizhub/models"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store. A unit of work writes to a private
// copy of the data that replaces the shared copy on Commit. Commit fails
// with ErrConflict when another write landed after Begin, so no committed
// write is ever overwritten.
type MemoryStore struct {
	mu      sync.RWMutex
	state   *memoryState
	version uint64

	// FailOn, when set, is consulted before every write with an operation
	// name such as "create answer"; a non-nil result aborts the write.
	FailOn func(op string) error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState()}
}

type memoryState struct {
	users     map[uuid.UUID]models.User
	quizzes   map[uuid.UUID]models.Quiz
	questions map[uuid.UUID]models.Question
	answers   map[uuid.UUID]models.Answer
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:     map[uuid.UUID]models.User{},
		quizzes:   map[uuid.UUID]models.Quiz{},
		questions: map[uuid.UUID]models.Question{},
		answers:   map[uuid.UUID]models.Answer{},
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.quizzes {
		c.quizzes[k] = v
	}
	for k, v := range s.questions {
		c.questions[k] = v
	}
	for k, v := range s.answers {
		c.answers[k] = v
	}
	return c
}

func (s *MemoryStore) Begin(_ context.Context) (UnitOfWork, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &memoryUnitOfWork{store: s, state: s.state.clone(), base: s.version}, nil
}

// Counts reports how many rows of each entity are stored.
func (s *MemoryStore) Counts() (users, quizzes, questions, answers int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state.users), len(s.state.quizzes), len(s.state.questions), len(s.state.answers)
}

// autocommit runs a single write in its own unit of work.
func (s *MemoryStore) autocommit(fn func(st *memoryState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state.clone()
	if err := fn(st); err != nil {
		return err
	}
	s.state = st
	s.version++
	return nil
}

func (s *MemoryStore) read(fn func(st *memoryState) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

func (s *MemoryStore) fail(op string) error {
	if s.FailOn == nil {
		return nil
	}
	return s.FailOn(op)
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	return s.autocommit(func(st *memoryState) error { return st.createUser(s, user) })
}

func (s *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (user *models.User, err error) {
	err = s.read(func(st *memoryState) error { user, err = st.getUser(id); return err })
	return user, err
}

func (s *MemoryStore) GetUserByUsername(_ context.Context, username string) (user *models.User, err error) {
	err = s.read(func(st *memoryState) error { user, err = st.getUserByUsername(username); return err })
	return user, err
}

func (s *MemoryStore) UpdateUserPassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	return s.autocommit(func(st *memoryState) error { return st.updateUserPassword(s, id, hashedPassword) })
}

func (s *MemoryStore) DeleteUser(_ context.Context, id uuid.UUID) error {
	return s.autocommit(func(st *memoryState) error { return st.deleteUser(s, id) })
}

func (s *MemoryStore) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	return s.autocommit(func(st *memoryState) error { return st.createQuiz(s, quiz) })
}

func (s *MemoryStore) GetQuiz(_ context.Context, id uuid.UUID) (quiz *models.Quiz, err error) {
	err = s.read(func(st *memoryState) error { quiz, err = st.getQuiz(id); return err })
	return quiz, err
}

func (s *MemoryStore) ListQuizzesByOwner(_ context.Context, ownerID uuid.UUID) (quizzes []models.Quiz, err error) {
	err = s.read(func(st *memoryState) error { quizzes = st.listQuizzesByOwner(ownerID); return nil })
	return quizzes, err
}

func (s *MemoryStore) UpdateQuiz(_ context.Context, id uuid.UUID, patch models.QuizPatch) error {
	return s.autocommit(func(st *memoryState) error { return st.updateQuiz(s, id, patch) })
}

func (s *MemoryStore) DeleteQuiz(_ context.Context, id uuid.UUID) error {
	return s.autocommit(func(st *memoryState) error { return st.deleteQuiz(s, id) })
}

func (s *MemoryStore) CreateQuestion(_ context.Context, question *models.Question) error {
	return s.autocommit(func(st *memoryState) error { return st.createQuestion(s, question) })
}

func (s *MemoryStore) GetQuestion(_ context.Context, id uuid.UUID) (question *models.Question, err error) {
	err = s.read(func(st *memoryState) error { question, err = st.getQuestion(id); return err })
	return question, err
}

func (s *MemoryStore) UpdateQuestion(_ context.Context, id uuid.UUID, patch models.QuestionPatch) error {
	return s.autocommit(func(st *memoryState) error { return st.updateQuestion(s, id, patch) })
}

func (s *MemoryStore) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	return s.autocommit(func(st *memoryState) error { return st.deleteQuestion(s, id) })
}

func (s *MemoryStore) CreateAnswer(_ context.Context, answer *models.Answer) error {
	return s.autocommit(func(st *memoryState) error { return st.createAnswer(s, answer) })
}

func (s *MemoryStore) GetAnswer(_ context.Context, id uuid.UUID) (answer *models.Answer, err error) {
	err = s.read(func(st *memoryState) error { answer, err = st.getAnswer(id); return err })
	return answer, err
}

func (s *MemoryStore) UpdateAnswer(_ context.Context, id uuid.UUID, patch models.AnswerPatch) error {
	return s.autocommit(func(st *memoryState) error { return st.updateAnswer(s, id, patch) })
}

func (s *MemoryStore) DeleteAnswer(_ context.Context, id uuid.UUID) error {
	return s.autocommit(func(st *memoryState) error { return st.deleteAnswer(s, id) })
}

type memoryUnitOfWork struct {
	store *MemoryStore
	state *memoryState
	base  uint64
	done  bool
}

func (u *memoryUnitOfWork) Commit() error {
	if u.done {
		return ErrTxDone
	}
	u.done = true
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.store.version != u.base {
		u.state = nil
		return ErrConflict
	}
	u.store.state = u.state
	u.store.version++
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.done = true
	u.state = nil
	return nil
}

func (u *memoryUnitOfWork) CreateUser(_ context.Context, user *models.User) error {
	return u.state.createUser(u.store, user)
}

func (u *memoryUnitOfWork) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	return u.state.getUser(id)
}

func (u *memoryUnitOfWork) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	return u.state.getUserByUsername(username)
}

func (u *memoryUnitOfWork) UpdateUserPassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	return u.state.updateUserPassword(u.store, id, hashedPassword)
}

func (u *memoryUnitOfWork) DeleteUser(_ context.Context, id uuid.UUID) error {
	return u.state.deleteUser(u.store, id)
}

func (u *memoryUnitOfWork) CreateQuiz(_ context.Context, quiz *models.Quiz) error {
	return u.state.createQuiz(u.store, quiz)
}

func (u *memoryUnitOfWork) GetQuiz(_ context.Context, id uuid.UUID) (*models.Quiz, error) {
	return u.state.getQuiz(id)
}

func (u *memoryUnitOfWork) ListQuizzesByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Quiz, error) {
	return u.state.listQuizzesByOwner(ownerID), nil
}

func (u *memoryUnitOfWork) UpdateQuiz(_ context.Context, id uuid.UUID, patch models.QuizPatch) error {
	return u.state.updateQuiz(u.store, id, patch)
}

func (u *memoryUnitOfWork) DeleteQuiz(_ context.Context, id uuid.UUID) error {
	return u.state.deleteQuiz(u.store, id)
}

func (u *memoryUnitOfWork) CreateQuestion(_ context.Context, question *models.Question) error {
	return u.state.createQuestion(u.store, question)
}

func (u *memoryUnitOfWork) GetQuestion(_ context.Context, id uuid.UUID) (*models.Question, error) {
	return u.state.getQuestion(id)
}

func (u *memoryUnitOfWork) UpdateQuestion(_ context.Context, id uuid.UUID, patch models.QuestionPatch) error {
	return u.state.updateQuestion(u.store, id, patch)
}

func (u *memoryUnitOfWork) DeleteQuestion(_ context.Context, id uuid.UUID) error {
	return u.state.deleteQuestion(u.store, id)
}

func (u *memoryUnitOfWork) CreateAnswer(_ context.Context, answer *models.Answer) error {
	return u.state.createAnswer(u.store, answer)
}

func (u *memoryUnitOfWork) GetAnswer(_ context.Context, id uuid.UUID) (*models.Answer, error) {
	return u.state.getAnswer(id)
}

func (u *memoryUnitOfWork) UpdateAnswer(_ context.Context, id uuid.UUID, patch models.AnswerPatch) error {
	return u.state.updateAnswer(u.store, id, patch)
}

func (u *memoryUnitOfWork) DeleteAnswer(_ context.Context, id uuid.UUID) error {
	return u.state.deleteAnswer(u.store, id)
}

func (st *memoryState) createUser(s *MemoryStore, user *models.User) error {
	if err := s.fail("create user"); err != nil {
		return err
	}
	for _, existing := range st.users {
		if existing.Username == user.Username {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if _, ok := st.users[user.ID]; ok {
		return ErrDuplicate
	}
	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	row := *user
	row.Quizzes = nil
	st.users[row.ID] = row
	return nil
}

func (st *memoryState) getUser(id uuid.UUID) (*models.User, error) {
	user, ok := st.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (st *memoryState) getUserByUsername(username string) (*models.User, error) {
	for _, user := range st.users {
		if user.Username == username {
			return &user, nil
		}
	}
	return nil, ErrNotFound
}

func (st *memoryState) updateUserPassword(s *MemoryStore, id uuid.UUID, hashedPassword string) error {
	if err := s.fail("update user"); err != nil {
		return err
	}
	user, ok := st.users[id]
	if !ok {
		return ErrNotFound
	}
	user.HashedPassword = hashedPassword
	user.UpdatedAt = time.Now().UTC()
	st.users[id] = user
	return nil
}

func (st *memoryState) deleteUser(s *MemoryStore, id uuid.UUID) error {
	if err := s.fail("delete user"); err != nil {
		return err
	}
	if _, ok := st.users[id]; !ok {
		return ErrNotFound
	}
	for quizID, quiz := range st.quizzes {
		if quiz.OwnerID == id {
			st.cascadeQuiz(quizID)
		}
	}
	delete(st.users, id)
	return nil
}

func (st *memoryState) createQuiz(s *MemoryStore, quiz *models.Quiz) error {
	if err := s.fail("create quiz"); err != nil {
		return err
	}
	if _, ok := st.users[quiz.OwnerID]; !ok {
		return ErrNotFound
	}
	if quiz.ID == uuid.Nil {
		quiz.ID = uuid.New()
	}
	now := time.Now().UTC()
	quiz.CreatedAt, quiz.UpdatedAt = now, now
	row := *quiz
	row.Owner, row.Questions = nil, nil
	st.quizzes[row.ID] = row

	for i := range quiz.Questions {
		quiz.Questions[i].QuizID = quiz.ID
		if err := st.createQuestion(s, &quiz.Questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (st *memoryState) getQuiz(id uuid.UUID) (*models.Quiz, error) {
	quiz, ok := st.quizzes[id]
	if !ok {
		return nil, ErrNotFound
	}
	quiz.Questions = st.questionsOf(id)
	return &quiz, nil
}

func (st *memoryState) listQuizzesByOwner(ownerID uuid.UUID) []models.Quiz {
	quizzes := []models.Quiz{}
	for id, quiz := range st.quizzes {
		if quiz.OwnerID != ownerID {
			continue
		}
		quiz.Questions = st.questionsOf(id)
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.After(quizzes[j].CreatedAt)
	})
	return quizzes
}

func (st *memoryState) updateQuiz(s *MemoryStore, id uuid.UUID, patch models.QuizPatch) error {
	if err := s.fail("update quiz"); err != nil {
		return err
	}
	quiz, ok := st.quizzes[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Empty() {
		return nil
	}
	patch.Apply(&quiz)
	quiz.UpdatedAt = time.Now().UTC()
	st.quizzes[id] = quiz
	return nil
}

func (st *memoryState) deleteQuiz(s *MemoryStore, id uuid.UUID) error {
	if err := s.fail("delete quiz"); err != nil {
		return err
	}
	if _, ok := st.quizzes[id]; !ok {
		return ErrNotFound
	}
	st.cascadeQuiz(id)
	return nil
}

func (st *memoryState) cascadeQuiz(id uuid.UUID) {
	for questionID, question := range st.questions {
		if question.QuizID == id {
			st.cascadeQuestion(questionID)
		}
	}
	delete(st.quizzes, id)
}

func (st *memoryState) createQuestion(s *MemoryStore, question *models.Question) error {
	if err := s.fail("create question"); err != nil {
		return err
	}
	if _, ok := st.quizzes[question.QuizID]; !ok {
		return ErrNotFound
	}
	if question.ID == uuid.Nil {
		question.ID = uuid.New()
	}
	now := time.Now().UTC()
	question.CreatedAt, question.UpdatedAt = now, now
	row := *question
	row.Quiz, row.Answers = nil, nil
	st.questions[row.ID] = row

	for i := range question.Answers {
		question.Answers[i].QuestionID = question.ID
		if err := st.createAnswer(s, &question.Answers[i]); err != nil {
			return err
		}
	}
	return nil
}

func (st *memoryState) getQuestion(id uuid.UUID) (*models.Question, error) {
	question, ok := st.questions[id]
	if !ok {
		return nil, ErrNotFound
	}
	quiz := st.quizzes[question.QuizID]
	question.Quiz = &quiz
	question.Answers = st.answersOf(id)
	return &question, nil
}

func (st *memoryState) updateQuestion(s *MemoryStore, id uuid.UUID, patch models.QuestionPatch) error {
	if err := s.fail("update question"); err != nil {
		return err
	}
	question, ok := st.questions[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Empty() {
		return nil
	}
	patch.Apply(&question)
	question.UpdatedAt = time.Now().UTC()
	st.questions[id] = question
	return nil
}

func (st *memoryState) deleteQuestion(s *MemoryStore, id uuid.UUID) error {
	if err := s.fail("delete question"); err != nil {
		return err
	}
	if _, ok := st.questions[id]; !ok {
		return ErrNotFound
	}
	st.cascadeQuestion(id)
	return nil
}

func (st *memoryState) cascadeQuestion(id uuid.UUID) {
	for answerID, answer := range st.answers {
		if answer.QuestionID == id {
			delete(st.answers, answerID)
		}
	}
	delete(st.questions, id)
}

func (st *memoryState) createAnswer(s *MemoryStore, answer *models.Answer) error {
	if err := s.fail("create answer"); err != nil {
		return err
	}
	if _, ok := st.questions[answer.QuestionID]; !ok {
		return ErrNotFound
	}
	if answer.ID == uuid.Nil {
		answer.ID = uuid.New()
	}
	now := time.Now().UTC()
	answer.CreatedAt, answer.UpdatedAt = now, now
	row := *answer
	row.Question = nil
	st.answers[row.ID] = row
	return nil
}

func (st *memoryState) getAnswer(id uuid.UUID) (*models.Answer, error) {
	answer, ok := st.answers[id]
	if !ok {
		return nil, ErrNotFound
	}
	question := st.questions[answer.QuestionID]
	quiz := st.quizzes[question.QuizID]
	question.Quiz = &quiz
	answer.Question = &question
	return &answer, nil
}

func (st *memoryState) updateAnswer(s *MemoryStore, id uuid.UUID, patch models.AnswerPatch) error {
	if err := s.fail("update answer"); err != nil {
		return err
	}
	answer, ok := st.answers[id]
	if !ok {
		return ErrNotFound
	}
	if patch.Empty() {
		return nil
	}
	patch.Apply(&answer)
	answer.UpdatedAt = time.Now().UTC()
	st.answers[id] = answer
	return nil
}

func (st *memoryState) deleteAnswer(s *MemoryStore, id uuid.UUID) error {
	if err := s.fail("delete answer"); err != nil {
		return err
	}
	if _, ok := st.answers[id]; !ok {
		return ErrNotFound
	}
	delete(st.answers, id)
	return nil
}

func (st *memoryState) questionsOf(quizID uuid.UUID) []models.Question {
	questions := []models.Question{}
	for id, question := range st.questions {
		if question.QuizID == quizID {
			question.Answers = st.answersOf(id)
			questions = append(questions, question)
		}
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Position < questions[j].Position
	})
	return questions
}

func (st *memoryState) answersOf(questionID uuid.UUID) []models.Answer {
	answers := []models.Answer{}
	for _, answer := range st.answers {
		if answer.QuestionID == questionID {
			answers = append(answers, answer)
		}
	}
	sort.SliceStable(answers, func(i, j int) bool {
		return answers[i].Position < answers[j].Position
	})
	return answers
}
