package repository

import (
	"context"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// CreateGroup вставляет новую группу курса и возвращает её ID.
func (s *Storage) CreateGroup(ctx context.Context, group models.Group) (int, error) {
	const op = "storage.CreateGroup"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO groups (course_id, title)
			  VALUES ($1, $2)
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query, group.CourseID, group.Title).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListGroups возвращает группы курса вместе с зачисленными студентами.
func (s *Storage) ListGroups(ctx context.Context, courseID int) ([]*models.GroupWithStudents, error) {
	const op = "storage.ListGroups"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, course_id, title
			  FROM groups
			  WHERE course_id = $1
			  ORDER BY id`
	rows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	byID := make(map[int]*models.GroupWithStudents)
	var result []*models.GroupWithStudents
	for rows.Next() {
		var item models.GroupWithStudents
		if err := rows.Scan(&item.ID, &item.CourseID, &item.Title); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.Students = []models.Student{}
		byID[item.ID] = &item
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query = `SELECT gs.group_id, u.username, u.email
			 FROM group_students gs
			 JOIN groups g ON g.id = gs.group_id
			 JOIN users u ON u.uid = gs.user_uid
			 WHERE g.course_id = $1
			 ORDER BY gs.group_id, u.username`
	studentRows, err := s.DB.QueryContext(ctx, query, courseID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = studentRows.Close()
	}()

	for studentRows.Next() {
		var groupID int
		var student models.Student
		if err := studentRows.Scan(&groupID, &student.Username, &student.Email); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if group, ok := byID[groupID]; ok {
			group.Students = append(group.Students, student)
		}
	}
	if err := studentRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
