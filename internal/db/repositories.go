package db

import "gorm.io/gorm"

type Repositories struct {
	Users     *UserRepository
	Projects  *ProjectRepository
	TaskTypes *TaskTypeRepository
	Tasks     *TaskRepository
	Reports   *ReportRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:     NewUserRepository(database),
		Projects:  NewProjectRepository(database),
		TaskTypes: NewTaskTypeRepository(database),
		Tasks:     NewTaskRepository(database),
		Reports:   NewReportRepository(database),
	}
}
