package templates

const buildReportTemplate = `# Build Report: {{BUILD_NUMBER}}

Generated: {{GENERATED_AT}}

## Build

| Field | Value |
| --- | --- |
| Build number | {{BUILD_NUMBER}} |
| Build ID | {{BUILD_ID}} |
| Status | {{STATUS}} |
| Result | {{RESULT}} |
| Branch | {{BRANCH}} |
| Pull request | {{PULL_REQUEST}} |
| Commit | {{COMMIT}} |
| Requested by | {{REQUESTED_BY}} |
| Trigger | {{TRIGGER}} |
| Started | {{STARTED_AT}} |
| Finished | {{FINISHED_AT}} |
| Duration | {{DURATION}} |

## Health Checks

| Check | Result |
| --- | --- |
| Security audit | {{SECURITY_AUDIT}} |
| Environment check | {{ENV_CHECK}} |
| Formatting | {{FORMATTING}} |
| Lint | {{LINT}} |
| Type check | {{TYPE_CHECK}} |
| Build | {{BUILD_OUTCOME}} |

## Tests

- Test files: {{TEST_FILES}}
- Tests: {{TESTS}}
- Duration: {{TEST_DURATION}}

## Coverage

- Statements: {{COV_STATEMENTS}}
- Branches: {{COV_BRANCHES}}
- Functions: {{COV_FUNCTIONS}}
- Lines: {{COV_LINES}}

## Artifacts

{{ARTIFACTS}}
`

const uatReleaseReportTemplate = `# UAT Release Report: {{RELEASE_NAME}}

Generated: {{GENERATED_AT}}

## Release

| Field | Value |
| --- | --- |
| Release | {{RELEASE_NAME}} |
| Release ID | {{RELEASE_ID}} |
| Status | {{RELEASE_STATUS}} |
| Pipeline | {{PIPELINE}} |
| Created | {{CREATED_AT}} by {{CREATED_BY}} |
| Description | {{DESCRIPTION}} |
| Build | {{BUILD_NUMBER}} |
| Branch | {{BRANCH}} |

## Environments

{{ENVIRONMENTS}}

## Approvals

{{APPROVALS}}

## Health Checks

| Check | Result |
| --- | --- |
| Security audit | {{SECURITY_AUDIT}} |
| Environment check | {{ENV_CHECK}} |
| Formatting | {{FORMATTING}} |
| Lint | {{LINT}} |
| Type check | {{TYPE_CHECK}} |
| Build | {{BUILD_OUTCOME}} |

## Tests

- Test files: {{TEST_FILES}}
- Tests: {{TESTS}}
- Duration: {{TEST_DURATION}}

## Coverage

- Statements: {{COV_STATEMENTS}}
- Branches: {{COV_BRANCHES}}
- Functions: {{COV_FUNCTIONS}}
- Lines: {{COV_LINES}}
`

const prodReleaseReportTemplate = `# Production Release Report: {{RELEASE_NAME}}

Generated: {{GENERATED_AT}}

## Release

| Field | Value |
| --- | --- |
| Release | {{RELEASE_NAME}} |
| Release ID | {{RELEASE_ID}} |
| Status | {{RELEASE_STATUS}} |
| Pipeline | {{PIPELINE}} |
| Created | {{CREATED_AT}} by {{CREATED_BY}} |
| Description | {{DESCRIPTION}} |
| Build | {{BUILD_NUMBER}} |
| Branch | {{BRANCH}} |

## Environments

{{ENVIRONMENTS}}

## Sign-off

{{APPROVALS}}

## Health Checks

| Check | Result |
| --- | --- |
| Security audit | {{SECURITY_AUDIT}} |
| Environment check | {{ENV_CHECK}} |
| Formatting | {{FORMATTING}} |
| Lint | {{LINT}} |
| Type check | {{TYPE_CHECK}} |
| Build | {{BUILD_OUTCOME}} |
`
