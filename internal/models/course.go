package models

import "time"

// Course представляет собой курс каталога.
type Course struct {
	ID        int       `json:"id"`         // Идентификатор курса
	Author    string    `json:"author"`     // Автор курса
	Title     string    `json:"title"`      // Название курса
	StartDate time.Time `json:"start_date"` // Дата старта курса
	Price     int       `json:"price"`      // Цена в бонусах
}

// CourseWithMetrics курс вместе с производными метриками,
// вычисляемыми на момент чтения списка.
type CourseWithMetrics struct {
	Course
	Lessons             []string `json:"lessons"`               // Названия уроков курса
	LessonsCount        int      `json:"lessons_count"`         // Количество уроков
	StudentsCount       int      `json:"students_count"`        // Количество активных подписок
	GroupsFilledPercent float64  `json:"groups_filled_percent"` // Средняя заполненность групп (макс. 30 мест)
	DemandCoursePercent float64  `json:"demand_course_percent"` // Доля купивших курс среди всех пользователей
}

// DummyCourse используется для приёма данных курса из JSON-запроса.
// Дата старта приходит строкой, чтобы её можно было валидировать и парсить вручную.
type DummyCourse struct {
	Author    string `json:"author" validate:"required"`     // Автор курса
	Title     string `json:"title" validate:"required"`      // Название курса
	StartDate string `json:"start_date" validate:"required"` // Дата старта в формате 02-01-2006
	Price     int    `json:"price" validate:"gte=0"`         // Цена в бонусах (>= 0)
}

// Lesson представляет собой урок курса.
type Lesson struct {
	ID       int    `json:"id"`        // Идентификатор урока
	CourseID int    `json:"course_id"` // Курс, к которому привязан урок
	Title    string `json:"title"`     // Название урока
	Link     string `json:"link"`      // Ссылка на материалы урока
}

// DummyLesson используется для приёма данных урока из JSON-запроса.
// Курс задаётся параметром маршрута, а не полем запроса.
type DummyLesson struct {
	Title string `json:"title" validate:"required"`    // Название урока
	Link  string `json:"link" validate:"required,url"` // Ссылка на материалы урока
}

// Group представляет собой учебную группу курса.
type Group struct {
	ID       int    `json:"id"`        // Идентификатор группы
	CourseID int    `json:"course_id"` // Курс, к которому привязана группа
	Title    string `json:"title"`     // Название группы
}

// GroupWithStudents группа вместе со списком зачисленных студентов.
type GroupWithStudents struct {
	Group
	Students []Student `json:"students"` // Зачисленные студенты
}

// DummyGroup используется для приёма данных группы из JSON-запроса.
type DummyGroup struct {
	Title string `json:"title" validate:"required"` // Название группы
}
