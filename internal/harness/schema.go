package harness

// Lookup queries. Each takes the object name as its only variable.
const (
	secretManagerByNameQuery = `query($name: String!) {
  secretManagerByName(name: $name) {
    id
    name
    usageScope {
      appEnvScopes {
        application { filterType appId }
        environment { filterType envId }
      }
    }
  }
}`

	userByNameQuery = `query($userName: String!) {
  userByName(name: $userName) {
    id
  }
}`

	userGroupByNameQuery = `query($userGroupName: String!) {
  userGroupByName(name: $userGroupName) {
    id
  }
}`
)

// Mutations.
const (
	createUserMutation = `mutation createUser($user: CreateUserInput!) {
  createUser(input: $user) {
    user {
      id
      email
      name
      userGroups(limit: 5) {
        nodes { id name }
      }
    }
    clientMutationId
  }
}`

	createUserGroupMutation = `mutation($userGroup: CreateUserGroupInput!) {
  createUserGroup(input: $userGroup) {
    userGroup {
      id
      name
      description
      users(limit: 190, offset: 0) {
        pageInfo { total }
        nodes { name email }
      }
      notificationSettings {
        sendNotificationToMembers
        sendMailToNewMembers
        groupEmailAddresses
      }
    }
  }
}`

	createSecretMutation = `mutation($secret: CreateSecretInput!) {
  createSecret(input: $secret) {
    secret {
      id
      name
      ... on EncryptedText {
        secretManagerId
      }
      usageScope {
        appEnvScopes {
          application { filterType appId }
          environment { filterType envId }
        }
      }
    }
  }
}`
)

// SecretType discriminates the CreateSecretInput union.
type SecretType string

const SecretTypeEncryptedText SecretType = "ENCRYPTED_TEXT"

// Filter types accepted in usage scopes.
const (
	FilterAll                       = "ALL"
	FilterProductionEnvironments    = "PRODUCTION_ENVIRONMENTS"
	FilterNonProductionEnvironments = "NON_PRODUCTION_ENVIRONMENTS"
)

// CreateUserInput is the input of the createUser mutation.
type CreateUserInput struct {
	Name             string   `json:"name"`
	Email            string   `json:"email"`
	ClientMutationID string   `json:"clientMutationId"`
	UserGroupIDs     []string `json:"userGroupIds"`
}

// CreateUserGroupInput is the input of the createUserGroup mutation.
type CreateUserGroupInput struct {
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds,omitempty"`
}

// CreateSecretInput is the input of the createSecret mutation.
type CreateSecretInput struct {
	SecretType    SecretType          `json:"secretType"`
	EncryptedText *EncryptedTextInput `json:"encryptedText,omitempty"`
}

// EncryptedTextInput describes an encrypted text secret.
type EncryptedTextInput struct {
	Name            string     `json:"name"`
	Value           string     `json:"value"`
	SecretManagerID string     `json:"secretManagerId"`
	UsageScope      UsageScope `json:"usageScope"`
}

// UsageScope declares which applications and environments an object applies to.
type UsageScope struct {
	AppEnvScopes []AppEnvScope `json:"appEnvScopes"`
}

// AppEnvScope pairs an application filter with an environment filter.
type AppEnvScope struct {
	Application AppFilter `json:"application"`
	Environment EnvFilter `json:"environment"`
}

type AppFilter struct {
	FilterType string `json:"filterType"`
	AppID      string `json:"appId,omitempty"`
}

type EnvFilter struct {
	FilterType string `json:"filterType"`
	EnvID      string `json:"envId,omitempty"`
}

// DefaultUsageScope is the scope given to every created secret: all
// applications in both production and non-production environments.
func DefaultUsageScope() UsageScope {
	return UsageScope{AppEnvScopes: []AppEnvScope{
		{
			Application: AppFilter{FilterType: FilterAll},
			Environment: EnvFilter{FilterType: FilterProductionEnvironments},
		},
		{
			Application: AppFilter{FilterType: FilterAll},
			Environment: EnvFilter{FilterType: FilterNonProductionEnvironments},
		},
	}}
}

type idNode struct {
	ID string `json:"id"`
}

type createUserData struct {
	CreateUser *struct {
		User *idNode `json:"user"`
	} `json:"createUser"`
}

type createUserGroupData struct {
	CreateUserGroup *struct {
		UserGroup *idNode `json:"userGroup"`
	} `json:"createUserGroup"`
}

type createSecretData struct {
	CreateSecret *struct {
		Secret *idNode `json:"secret"`
	} `json:"createSecret"`
}
