// Package services содержит бизнес-логику каталога курсов: CRUD курсов,
// уроков и групп, проверку доступа к урокам и расчёт производных метрик.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/sl"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// ErrNoSubscription у пользователя нет подписки на курс,
// доступ к урокам запрещён.
var ErrNoSubscription = errors.New("no active subscription for this course")

// CoursesCacheKey ключ кеша списка курсов с метриками.
const CoursesCacheKey = "courses:list"

// groupCapacity вместимость группы, используется только в метрике заполненности.
const groupCapacity = 30

// coursesCacheTTL время жизни кеша списка курсов.
const coursesCacheTTL = time.Minute

// startDateLayout формат даты старта курса во входящих запросах.
const startDateLayout = "02-01-2006"

// CatalogRepository определяет методы для работы с каталогом в хранилище.
type CatalogRepository interface {
	CreateCourse(ctx context.Context, course models.Course) (int, error)
	GetCourse(ctx context.Context, id int) (*models.Course, error)
	UpdateCourse(ctx context.Context, course models.Course, id int) (int, error)
	RemoveCourse(ctx context.Context, id int) (int, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	ListLessonTitlesByCourse(ctx context.Context) (map[int][]string, error)
	CountLessonsByCourse(ctx context.Context) (map[int]int, error)
	CountSubscriptionsByCourse(ctx context.Context) (map[int]int, error)
	GroupMemberCounts(ctx context.Context) (map[int][]int, error)
	CountUsers(ctx context.Context) (int, error)
	CreateLesson(ctx context.Context, lesson models.Lesson) (int, error)
	ListLessons(ctx context.Context, courseID int) ([]*models.Lesson, error)
	RemoveLesson(ctx context.Context, courseID, lessonID int) (int, error)
	CreateGroup(ctx context.Context, group models.Group) (int, error)
	ListGroups(ctx context.Context, courseID int) ([]*models.GroupWithStudents, error)
	HasSubscription(ctx context.Context, userUID string, courseID int) (bool, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CatalogService реализует бизнес-логику каталога, включая кеширование списка курсов.
type CatalogService struct {
	repo  CatalogRepository
	cache Cache
	log   *slog.Logger
}

// NewCatalogService создает новый экземпляр CatalogService.
func NewCatalogService(repo CatalogRepository, cache Cache, log *slog.Logger) *CatalogService {
	return &CatalogService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListCourses возвращает все курсы с производными метриками.
// Метрики пересчитываются на момент чтения и кешируются на короткое время.
func (s *CatalogService) ListCourses(ctx context.Context) ([]*models.CourseWithMetrics, error) {
	var cached []*models.CourseWithMetrics
	if ok, err := s.cache.Get(CoursesCacheKey, &cached); err != nil {
		s.log.Warn("failed to read course list cache", sl.Err(err))
	} else if ok {
		return cached, nil
	}

	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	titles, err := s.repo.ListLessonTitlesByCourse(ctx)
	if err != nil {
		return nil, err
	}
	lessonCounts, err := s.repo.CountLessonsByCourse(ctx)
	if err != nil {
		return nil, err
	}
	subCounts, err := s.repo.CountSubscriptionsByCourse(ctx)
	if err != nil {
		return nil, err
	}
	groupCounts, err := s.repo.GroupMemberCounts(ctx)
	if err != nil {
		return nil, err
	}
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.CourseWithMetrics, 0, len(courses))
	for _, course := range courses {
		item := &models.CourseWithMetrics{
			Course:              *course,
			Lessons:             titles[course.ID],
			LessonsCount:        lessonCounts[course.ID],
			StudentsCount:       subCounts[course.ID],
			GroupsFilledPercent: groupsFilledPercent(groupCounts[course.ID]),
			DemandCoursePercent: demandPercent(subCounts[course.ID], totalUsers),
		}
		if item.Lessons == nil {
			item.Lessons = []string{}
		}
		result = append(result, item)
	}

	if err := s.cache.Set(CoursesCacheKey, result, coursesCacheTTL); err != nil {
		s.log.Warn("failed to cache course list", sl.Err(err))
	}
	return result, nil
}

// CreateCourse создает новый курс и возвращает его ID.
func (s *CatalogService) CreateCourse(ctx context.Context, req models.DummyCourse) (int, error) {
	startDate, err := time.Parse(startDateLayout, req.StartDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date: %w", err)
	}
	course := models.Course{
		Author:    req.Author,
		Title:     req.Title,
		StartDate: startDate,
		Price:     req.Price,
	}

	id, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new course", slog.Int("id", id))
	s.invalidateCourses()
	return id, nil
}

// UpdateCourse обновляет курс по ID. Цена остаётся изменяемой и при наличии
// подписок: покупка фиксирует цену в момент списания.
func (s *CatalogService) UpdateCourse(ctx context.Context, id int, req models.DummyCourse) error {
	startDate, err := time.Parse(startDateLayout, req.StartDate)
	if err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	course := models.Course{
		Author:    req.Author,
		Title:     req.Title,
		StartDate: startDate,
		Price:     req.Price,
	}

	rows, err := s.repo.UpdateCourse(ctx, course, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrCourseNotFound
	}
	s.invalidateCourses()
	return nil
}

// RemoveCourse удаляет курс по ID.
func (s *CatalogService) RemoveCourse(ctx context.Context, id int) error {
	rows, err := s.repo.RemoveCourse(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrCourseNotFound
	}
	s.invalidateCourses()
	return nil
}

// ListLessons возвращает уроки курса. Доступ имеют администраторы
// и пользователи с подпиской на курс, остальным возвращается ErrNoSubscription.
func (s *CatalogService) ListLessons(ctx context.Context, courseID int, userUID, role string) ([]*models.Lesson, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if role != "admin" {
		subscribed, err := s.repo.HasSubscription(ctx, userUID, courseID)
		if err != nil {
			return nil, err
		}
		if !subscribed {
			return nil, ErrNoSubscription
		}
	}
	return s.repo.ListLessons(ctx, courseID)
}

// CreateLesson создает урок в курсе, заданном параметром маршрута.
func (s *CatalogService) CreateLesson(ctx context.Context, courseID int, req models.DummyLesson) (int, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return 0, err
	}
	lesson := models.Lesson{
		CourseID: courseID,
		Title:    req.Title,
		Link:     req.Link,
	}
	id, err := s.repo.CreateLesson(ctx, lesson)
	if err != nil {
		return 0, err
	}
	s.invalidateCourses()
	return id, nil
}

// RemoveLesson удаляет урок курса.
func (s *CatalogService) RemoveLesson(ctx context.Context, courseID, lessonID int) error {
	rows, err := s.repo.RemoveLesson(ctx, courseID, lessonID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrLessonNotFound
	}
	s.invalidateCourses()
	return nil
}

// CreateGroup создает группу в курсе, заданном параметром маршрута.
func (s *CatalogService) CreateGroup(ctx context.Context, courseID int, req models.DummyGroup) (int, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return 0, err
	}
	group := models.Group{
		CourseID: courseID,
		Title:    req.Title,
	}
	id, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return 0, err
	}
	s.invalidateCourses()
	return id, nil
}

// ListGroups возвращает группы курса со студентами.
func (s *CatalogService) ListGroups(ctx context.Context, courseID int) ([]*models.GroupWithStudents, error) {
	if _, err := s.repo.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.repo.ListGroups(ctx, courseID)
}

func (s *CatalogService) invalidateCourses() {
	if err := s.cache.Invalidate(CoursesCacheKey); err != nil {
		s.log.Warn("failed to invalidate course list cache", sl.Err(err))
	}
}

// groupsFilledPercent средняя заполненность групп курса в процентах
// при вместимости groupCapacity, не выше 100 на группу. 0, если групп нет.
func groupsFilledPercent(memberCounts []int) float64 {
	if len(memberCounts) == 0 {
		return 0
	}
	var sum float64
	for _, members := range memberCounts {
		sum += math.Min(100, float64(members)*100/groupCapacity)
	}
	return round2(sum / float64(len(memberCounts)))
}

// demandPercent доля купивших курс среди всех пользователей в процентах.
// 0, если пользователей нет вовсе.
func demandPercent(students, totalUsers int) float64 {
	if totalUsers == 0 {
		return 0
	}
	return round2(float64(students) * 100 / float64(totalUsers))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
