package main

import (
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type LeagueStackProps struct {
	awscdk.StackProps
}

// NewLeagueStack deploys the web app as one Lambda behind API Gateway. State
// lives in the Postgres database named by POSTGRES_DSN at deploy time.
func NewLeagueStack(scope constructs.Construct, id string, props *LeagueStackProps) awscdk.Stack {
	var stackProps awscdk.StackProps
	if props != nil {
		stackProps = props.StackProps
	}

	stack := awscdk.NewStack(scope, &id, &stackProps)

	lambdaFn := awslambda.NewFunction(stack, jsii.String("LeagueApi"), &awslambda.FunctionProps{
		Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
		Architecture: awslambda.Architecture_ARM_64(),
		Handler:      jsii.String("bootstrap"),
		Code:         awslambda.Code_FromAsset(jsii.String("../dist"), nil),
		MemorySize:   jsii.Number(256),
		Timeout:      awscdk.Duration_Seconds(jsii.Number(15)),
		Environment: &map[string]*string{
			"APP":                 jsii.String("prod"),
			"LOG_LEVEL":           jsii.String("info"),
			"POSTGRES_DSN":        jsii.String(os.Getenv("POSTGRES_DSN")),
			"ADMIN_PASSWORD_HASH": jsii.String(os.Getenv("ADMIN_PASSWORD_HASH")),
			"JWT_SECRET":          jsii.String(os.Getenv("JWT_SECRET")),
		},
	})

	api := awsapigateway.NewLambdaRestApi(stack, jsii.String("LeagueApiGateway"), &awsapigateway.LambdaRestApiProps{
		Handler: lambdaFn,
	})

	awscdk.NewCfnOutput(stack, jsii.String("ApiUrl"), &awscdk.CfnOutputProps{Value: api.Url()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)
	NewLeagueStack(app, "F1LeagueStack", &LeagueStackProps{})
	app.Synth(nil)
}
