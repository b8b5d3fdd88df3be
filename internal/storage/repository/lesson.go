package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateLesson вставляет новый урок курса и возвращает его ID.
func (s *Storage) CreateLesson(ctx context.Context, lesson models.Lesson) (int, error) {
	const op = "storage.CreateLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO lessons (course_id, title, link)
			  VALUES ($1, $2, $3)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		lesson.CourseID, lesson.Title, lesson.Link).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListLessons возвращает все уроки указанного курса.
func (s *Storage) ListLessons(ctx context.Context, courseID int) ([]*models.Lesson, error) {
	const op = "storage.ListLessons"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, course_id, title, link
			  FROM lessons
			  WHERE course_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Lesson
	for rows.Next() {
		var item models.Lesson
		if err := rows.Scan(&item.ID, &item.CourseID, &item.Title, &item.Link); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RemoveLesson удаляет урок курса и возвращает количество удалённых строк.
func (s *Storage) RemoveLesson(ctx context.Context, courseID, lessonID int) (int, error) {
	const op = "storage.RemoveLesson"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `DELETE FROM lessons WHERE id = $1 AND course_id = $2`
	result, err := s.DB.ExecContext(ctx, query, lessonID, courseID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}
