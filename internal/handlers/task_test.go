package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	"github.com/yukikurage/task-tracker-api/internal/models"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	env   *apiTestEnv
	alice []*http.Cookie
	bob   []*http.Cookie
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.env = setupAPITestEnv(suite.T())
	_, suite.alice = suite.env.signup(suite.T(), "alice", models.RoleUser)
	_, suite.bob = suite.env.signup(suite.T(), "bob", models.RoleUser)
}

func (suite *TaskHandlerTestSuite) createTask(cookies []*http.Cookie, body map[string]any) dto.TaskDTO {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", body, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return decode[dto.TaskDTO](suite.T(), w)
}

func (suite *TaskHandlerTestSuite) TestRequiresAuthentication() {
	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks", nil, nil)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	task := suite.createTask(suite.alice, map[string]any{
		"title":    "  Test Task ",
		"priority": "high",
		"dueDate":  "2025-12-31",
	})

	assert.Equal(suite.T(), "Test Task", task.Title)
	assert.Equal(suite.T(), models.TaskStatusPending, task.Status)
	assert.Equal(suite.T(), models.TaskPriorityHigh, task.Priority)
	suite.Require().NotNil(task.DueDate)
	assert.Equal(suite.T(), "2025-12-31", task.DueDate.Format("2006-01-02"))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ValidationErrors() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": ""}, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Equal(suite.T(), "INVALID_INPUT", decode[errorBody](suite.T(), w).Code)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{"title": "A", "status": "done"}, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodPost, "/api/tasks", "{not json", suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UploadFailure() {
	suite.env.store.err = errBucketGone

	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks", map[string]any{
		"title": "Pic",
		"image": "data:image/png;base64,iVBORw0KGgo=",
	}, suite.alice)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	body := decode[errorBody](suite.T(), w)
	assert.Equal(suite.T(), "UPLOAD_FAILED", body.Code)
	assert.Equal(suite.T(), "bucket is gone", body.Details)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundAndMalformed() {
	task := suite.createTask(suite.alice, map[string]any{"title": "Private"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/not-a-uuid", nil, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, nil, suite.alice)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Private", decode[dto.TaskDTO](suite.T(), w).Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Paginates() {
	for _, title := range []string{"one", "two", "three"} {
		suite.createTask(suite.alice, map[string]any{"title": title})
	}
	suite.createTask(suite.bob, map[string]any{"title": "bob's"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks?page=2&limit=2", nil, suite.alice)
	suite.Require().Equal(http.StatusOK, w.Code)

	response := decode[dto.TaskListResponse](suite.T(), w)
	assert.EqualValues(suite.T(), 3, response.Total)
	assert.Equal(suite.T(), 2, response.Page)
	assert.Equal(suite.T(), 2, response.Pages)
	assert.Len(suite.T(), response.Tasks, 1)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks?priority=urgent", nil, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask() {
	task := suite.createTask(suite.alice, map[string]any{"title": "Draft", "dueDate": "2025-01-01"})

	w := suite.env.do(suite.T(), http.MethodPut, "/api/tasks/"+task.ID,
		`{"status":"completed","dueDate":null,"user":"someone-else","id":"ignored"}`, suite.alice)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	updated := decode[dto.TaskDTO](suite.T(), w)
	assert.Equal(suite.T(), task.ID, updated.ID)
	assert.Equal(suite.T(), task.User, updated.User)
	assert.Equal(suite.T(), "Draft", updated.Title)
	assert.Equal(suite.T(), models.TaskStatusCompleted, updated.Status)
	assert.Nil(suite.T(), updated.DueDate)

	w = suite.env.do(suite.T(), http.MethodPut, "/api/tasks/"+task.ID, `{"title":null}`, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.env.do(suite.T(), http.MethodPut, "/api/tasks/"+task.ID, `{"title":"Mine now"}`, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTask(suite.alice, map[string]any{"title": "Doomed"})

	w := suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil, suite.bob)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+uuid.NewString(), nil, suite.alice)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil, suite.alice)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"message":"Task deleted successfully."}`, w.Body.String())

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, nil, suite.alice)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSearchTasks() {
	suite.createTask(suite.alice, map[string]any{"title": "Buy milk"})
	suite.createTask(suite.alice, map[string]any{"title": "Walk dog", "description": "MILK run after"})
	suite.createTask(suite.bob, map[string]any{"title": "Bob's milk"})

	w := suite.env.do(suite.T(), http.MethodGet, "/api/tasks/search?q=milk", nil, suite.alice)
	suite.Require().Equal(http.StatusOK, w.Code)
	assert.Len(suite.T(), decode[[]dto.TaskDTO](suite.T(), w), 2)

	w = suite.env.do(suite.T(), http.MethodGet, "/api/tasks/search?q=", nil, suite.alice)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_NotConfigured() {
	w := suite.env.do(suite.T(), http.MethodPost, "/api/tasks/generate", map[string]any{"text": "do things"}, suite.alice)
	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func (suite *TaskHandlerTestSuite) TestAdminMutationsAreAudited() {
	_, admin := suite.env.signup(suite.T(), "root", models.RoleAdmin)

	task := suite.createTask(admin, map[string]any{"title": "Admin task"})
	suite.env.do(suite.T(), http.MethodGet, "/api/tasks/"+task.ID, nil, admin)
	suite.env.do(suite.T(), http.MethodDelete, "/api/tasks/"+task.ID, nil, admin)
	suite.createTask(suite.alice, map[string]any{"title": "Not audited"})

	suite.Require().NoError(suite.env.audit.Close(context.Background()))

	var count int64
	suite.Require().NoError(suite.env.db.Model(&models.AdminAction{}).Where("target = ?", "Task").Count(&count).Error)
	assert.EqualValues(suite.T(), 2, count)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
