package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateCourse вставляет новый курс и возвращает его ID.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (int, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO courses (author, title, start_date, price)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		course.Author, course.Title, course.StartDate, course.Price).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetCourse возвращает курс по его ID.
func (s *Storage) GetCourse(ctx context.Context, id int) (*models.Course, error) {
	const op = "storage.GetCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, author, title, start_date, price
			  FROM courses WHERE id = $1`
	var course models.Course
	err := s.DB.QueryRowContext(ctx, query, id).Scan(&course.ID, &course.Author,
		&course.Title, &course.StartDate, &course.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &course, nil
}

// UpdateCourse обновляет данные курса по его ID и возвращает количество изменённых строк.
func (s *Storage) UpdateCourse(ctx context.Context, course models.Course, id int) (int, error) {
	const op = "storage.UpdateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE courses
			  SET author = $1, title = $2, start_date = $3, price = $4
			  WHERE id = $5`
	result, err := s.DB.ExecContext(ctx, query,
		course.Author, course.Title, course.StartDate, course.Price, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// RemoveCourse удаляет курс по ID и возвращает количество удалённых строк.
// Уроки, группы и подписки курса удаляются каскадно на уровне схемы.
func (s *Storage) RemoveCourse(ctx context.Context, id int) (int, error) {
	const op = "storage.RemoveCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM courses WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListCourses возвращает список всех курсов в порядке их создания.
func (s *Storage) ListCourses(ctx context.Context) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, author, title, start_date, price
			  FROM courses
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		var item models.Course
		if err := rows.Scan(&item.ID, &item.Author, &item.Title,
			&item.StartDate, &item.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListLessonTitlesByCourse возвращает названия уроков, сгруппированные по курсам.
func (s *Storage) ListLessonTitlesByCourse(ctx context.Context) (map[int][]string, error) {
	const op = "storage.ListLessonTitlesByCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT course_id, title FROM lessons ORDER BY course_id, id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[int][]string)
	for rows.Next() {
		var courseID int
		var title string
		if err := rows.Scan(&courseID, &title); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[courseID] = append(result[courseID], title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountLessonsByCourse возвращает количество уроков по каждому курсу.
func (s *Storage) CountLessonsByCourse(ctx context.Context) (map[int]int, error) {
	const op = "storage.CountLessonsByCourse"
	return s.countByCourse(ctx, op,
		`SELECT course_id, COUNT(*) FROM lessons GROUP BY course_id`)
}

// CountSubscriptionsByCourse возвращает количество активных подписок по каждому курсу.
func (s *Storage) CountSubscriptionsByCourse(ctx context.Context) (map[int]int, error) {
	const op = "storage.CountSubscriptionsByCourse"
	return s.countByCourse(ctx, op,
		`SELECT course_id, COUNT(*) FROM subscriptions GROUP BY course_id`)
}

// GroupMemberCounts возвращает для каждого курса количество студентов
// в каждой его группе. Группы без студентов учитываются нулём.
func (s *Storage) GroupMemberCounts(ctx context.Context) (map[int][]int, error) {
	const op = "storage.GroupMemberCounts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT g.course_id, COUNT(gs.user_uid)
			  FROM groups g
			  LEFT JOIN group_students gs ON gs.group_id = g.id
			  GROUP BY g.id, g.course_id
			  ORDER BY g.id`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[int][]int)
	for rows.Next() {
		var courseID, members int
		if err := rows.Scan(&courseID, &members); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[courseID] = append(result[courseID], members)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func (s *Storage) countByCourse(ctx context.Context, op, query string) (map[int]int, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := make(map[int]int)
	for rows.Next() {
		var courseID, count int
		if err := rows.Scan(&courseID, &count); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result[courseID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
